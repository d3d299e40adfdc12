package utils

// PermError marks a failure that retrying cannot fix. ReliableExec stops on
// the first one.
type PermError string

func (e PermError) Error() string {
	return string(e)
}

func (e PermError) IsPermanent() bool {
	return true
}
