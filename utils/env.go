package utils

import "os"

var (
	// DATASTORE selects where the catalog snapshot lives: disk, memory, s3 or crdb
	DATASTORE = GetEnvOrDefault("DATASTORE", "disk")

	DATA_PATH      = GetEnvOrDefault("DATA_PATH", "data/db.json")
	SNAPSHOT_KEY   = GetEnvOrDefault("SNAPSHOT_KEY", "snapshots/db.json")
	AUDIT_LOG_PATH = GetEnvOrDefault("AUDIT_LOG_PATH", "data/sql.log")
	EXPORT_PREFIX  = GetEnvOrDefault("EXPORT_PREFIX", "exports")

	// SEED_WALLETS creates the wallets and ledger tables on boot
	SEED_WALLETS = os.Getenv("SEED_WALLETS") == "1"

	CRDB_DSN = os.Getenv("CRDB_DSN")

	AWS_ACCESS_KEY_ID     = os.Getenv("AWS_ACCESS_KEY_ID")
	AWS_SECRET_ACCESS_KEY = os.Getenv("AWS_SECRET_ACCESS_KEY")
	AWS_DEFAULT_REGION    = GetEnvOrDefault("AWS_DEFAULT_REGION", "us-east-1")

	S3_BUCKET_NAME = os.Getenv("S3_BUCKET_NAME")
	S3_ENDPOINT    = os.Getenv("S3_ENDPOINT")
)
