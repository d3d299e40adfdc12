package parser

type Kind string

const (
	KindShowTables  Kind = "SHOW_TABLES"
	KindCreateTable Kind = "CREATE_TABLE"
	KindInsert      Kind = "INSERT"
	KindSelect      Kind = "SELECT"
	KindJoin        Kind = "JOIN"
	KindUpdate      Kind = "UPDATE"
	KindDelete      Kind = "DELETE"
)

type (
	// Command is one parsed statement. Literal values stay raw source text;
	// the executor interprets them against the target column types.
	Command interface {
		Kind() Kind
	}

	ShowTables struct{}

	CreateTable struct {
		Table   string
		Columns []ColumnDef
	}

	ColumnDef struct {
		Name string
		// Type is the type token as written, uppercased
		Type     string
		Primary  bool
		Unique   bool
		Nullable bool
	}

	Insert struct {
		Table string
		// Columns is nil when the statement lists no columns
		Columns []string
		Values  []string
	}

	Select struct {
		// Columns is nil for SELECT *
		Columns []string
		Table   string
		Where   *Where
	}

	Join struct {
		Columns []string
		Left    string
		Right   string
		// LeftColumn and RightColumn are the ON operands as written, possibly
		// qualified with a table name
		LeftColumn  string
		RightColumn string
		Where       *Where
	}

	Update struct {
		Table string
		Set   []Assignment
		Where *Where
	}

	Assignment struct {
		Column string
		Value  string
	}

	Delete struct {
		Table string
		Where *Where
	}

	// Where is a single column = literal predicate.
	Where struct {
		Column string
		Value  string
	}
)

func (ShowTables) Kind() Kind  { return KindShowTables }
func (CreateTable) Kind() Kind { return KindCreateTable }
func (Insert) Kind() Kind      { return KindInsert }
func (Select) Kind() Kind      { return KindSelect }
func (Join) Kind() Kind        { return KindJoin }
func (Update) Kind() Kind      { return KindUpdate }
func (Delete) Kind() Kind      { return KindDelete }
