package envelope

// Kind enumerates the closed set of directive variants. Directives are a
// tagged set, not an interface; the executor dispatches on Kind.
type Kind int

const (
	KindNew Kind = iota
	KindPatch
	KindHashlinePatch
	KindRename
	KindDelete
	KindFail
)

func (k Kind) String() string {
	switch k {
	case KindNew:
		return "New"
	case KindPatch:
		return "Patch"
	case KindHashlinePatch:
		return "HashlinePatch"
	case KindRename:
		return "Rename"
	case KindDelete:
		return "Delete"
	default:
		return "Fail"
	}
}

// Directive is one parsed file-change instruction. Which fields are set
// depends on Kind:
//
//	New, Patch, HashlinePatch: FilePath, Content
//	Rename:                    FromPath, ToPath
//	Delete:                    FilePath
//	Fail:                      FailKind, FilePath (best effort), Reason
//
// Directives are immutable once parsed.
type Directive struct {
	Kind     Kind
	FilePath string
	FromPath string
	ToPath   string
	Content  Content

	FailKind string
	Reason   string
}

// Changes is the ordered directive list extracted from one envelope.
type Changes struct {
	Directives []Directive
}

// Empty reports whether no directives were extracted.
func (c *Changes) Empty() bool { return len(c.Directives) == 0 }
