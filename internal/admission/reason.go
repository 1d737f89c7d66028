package admission

// Reason names why a record was left out of the tree. The empty Reason
// means the record was admitted.
type Reason string

const (
	Admitted           Reason = ""
	Blacklisted        Reason = "blacklisted"
	CurriculumMismatch Reason = "curriculum-mismatch"
	VariantOnly        Reason = "variant-only"
	UntranslatedTopic  Reason = "untranslated-topic"
	UntranslatedLeaf   Reason = "untranslated-leaf"
	UnsupportedKind    Reason = "unsupported-kind"
	UnknownKind        Reason = "unknown-kind"
	InvalidLicense     Reason = "invalid-license"
	NoDownload         Reason = "no-download"
	WrongLanguage      Reason = "wrong-language"
	UntranslatedNoSubs Reason = "untranslated-no-subs"
	NoQuestions        Reason = "no-questions"
	EmptyTopic         Reason = "empty-topic"
	DomainNotOrdered   Reason = "domain-not-ordered"
)

// Reasons lists every exclusion reason in report order.
var Reasons = []Reason{
	Blacklisted,
	CurriculumMismatch,
	VariantOnly,
	UntranslatedTopic,
	UntranslatedLeaf,
	UnsupportedKind,
	UnknownKind,
	InvalidLicense,
	NoDownload,
	WrongLanguage,
	UntranslatedNoSubs,
	NoQuestions,
	EmptyTopic,
	DomainNotOrdered,
}

// OK reports whether r admits the record.
func (r Reason) OK() bool { return r == Admitted }

func (r Reason) String() string {
	if r == Admitted {
		return "admitted"
	}
	return string(r)
}
