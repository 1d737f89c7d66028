package language

import (
	"sort"
	"strings"

	xlanguage "golang.org/x/text/language"
)

type entry struct {
	code      string // le-utils code used throughout kachef
	kalang    string // code used by Khan Academy exports and subdomains
	name      string // English name, also the dubbed-sheet column header
	native    string
	supported bool // has a TSV export and native translations on KA
}

var languages = []entry{
	{"az", "az", "Azerbaijani", "Azərbaycan dili", true},
	{"bg", "bg", "Bulgarian", "български език", true},
	{"bn", "bn", "Bengali", "বাংলা", true},
	{"cs", "cs", "Czech", "čeština", true},
	{"da", "da", "Danish", "dansk", true},
	{"de", "de", "German", "Deutsch", true},
	{"el", "el", "Greek", "Ελληνικά", true},
	{"en", "en", "English", "English", true},
	{"es", "es", "Spanish", "Español", true},
	{"fr", "fr", "French", "Français", true},
	{"fuv", "fv", "Fulfulde", "Fulfulde", true},
	{"gu", "gu", "Gujarati", "ગુજરાતી", true},
	{"hi", "hi", "Hindi", "हिन्दी", true},
	{"hu", "hu", "Hungarian", "magyar", true},
	{"hy", "hy", "Armenian", "Հայերեն", true},
	{"id", "id", "Indonesian", "Bahasa Indonesia", true},
	{"it", "it", "Italian", "Italiano", true},
	{"ja", "ja", "Japanese", "日本語", true},
	{"ka", "ka", "Georgian", "ქართული", true},
	{"km", "km", "Khmer", "ភាសាខ្មែរ", true},
	{"kn", "kn", "Kannada", "ಕನ್ನಡ", true},
	{"ko", "ko", "Korean", "한국어", true},
	{"ky", "ky", "Kyrgyz", "кыргыз тили", true},
	{"lt", "lt", "Lithuanian", "lietuvių kalba", true},
	{"my", "my", "Burmese", "ဗမာစာ", true},
	{"nb", "nb", "Norwegian Bokmål", "Norsk bokmål", true},
	{"nl", "nl", "Dutch", "Nederlands", true},
	{"pl", "pl", "Polish", "polski", true},
	{"pt-BR", "pt", "Portuguese, Brazil", "Português - Brasil", true},
	{"pt-PT", "pt-pt", "Portuguese", "Português", true},
	{"ru", "ru", "Russian", "русский", true},
	{"sr", "sr", "Serbian", "српски језик", true},
	{"sv", "sv", "Swedish", "svenska", true},
	{"ta", "ta", "Tamil", "தமிழ்", true},
	{"tr", "tr", "Turkish", "Türkçe", true},
	{"uz", "uz", "Uzbek", "O‘zbek", true},
	{"zh-CN", "zh-hans", "Chinese, Simplified", "中文(简体)", true},
	{"sw", "swa", "Swahili", "Kiswahili", false},
	{"uk", "uk", "Ukrainian", "українська", false},
	{"ur", "ur", "Urdu", "اردو", false},
	{"zul", "zu", "Zulu", "isiZulu", false},
}

// legacyAliases maps codes still passed by older scripts onto their le-utils form.
var legacyAliases = map[string]string{
	"swa": "sw",
}

var (
	byCode   map[string]*entry
	byKALang map[string]*entry
)

func init() {
	byCode = make(map[string]*entry, len(languages))
	byKALang = make(map[string]*entry, len(languages))
	for i := range languages {
		e := &languages[i]
		byCode[strings.ToLower(e.code)] = e
		byKALang[e.kalang] = e
	}
}

func lookup(code string) *entry {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil
	}
	if alias, ok := legacyAliases[code]; ok {
		code = alias
	}
	if e, ok := byCode[code]; ok {
		return e
	}
	return nil
}

// Normalize returns the canonical le-utils spelling of code, resolving
// legacy aliases. Unknown codes are returned trimmed.
func Normalize(code string) string {
	if e := lookup(code); e != nil {
		return e.code
	}
	return strings.TrimSpace(code)
}

// Known reports whether code is present in the language table.
func Known(code string) bool {
	return lookup(code) != nil
}

// ToKALang converts an le-utils code to the code used by Khan Academy
// exports (e.g. pt-BR → pt, zh-CN → zh-hans). Unknown codes pass through.
func ToKALang(code string) string {
	if e := lookup(code); e != nil {
		return e.kalang
	}
	return strings.TrimSpace(code)
}

// FromKALang converts a Khan Academy code back to le-utils. Unknown codes pass through.
func FromKALang(kalang string) string {
	key := strings.ToLower(strings.TrimSpace(kalang))
	if e, ok := byKALang[key]; ok {
		return e.code
	}
	return strings.TrimSpace(kalang)
}

// IsSupported reports whether KA natively supports code; unsupported
// languages rely on a translation memory for titles and descriptions.
func IsSupported(code string) bool {
	e := lookup(code)
	return e != nil && e.supported
}

// Supported lists the natively supported le-utils codes in sorted order.
func Supported() []string {
	out := make([]string, 0, len(languages))
	for _, e := range languages {
		if e.supported {
			out = append(out, e.code)
		}
	}
	sort.Strings(out)
	return out
}

// Name returns the English language name, or the code itself when unknown.
func Name(code string) string {
	if e := lookup(code); e != nil {
		return e.name
	}
	return strings.TrimSpace(code)
}

// NativeName returns the endonym for code, falling back to Name.
func NativeName(code string) string {
	if e := lookup(code); e != nil && e.native != "" {
		return e.native
	}
	return Name(code)
}

// Primary returns the primary language subtag of code ("es-MX" → "es").
// Khan Academy codes are mapped to le-utils first so "zh-hans" and "zh-CN"
// agree.
func Primary(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	if e, ok := byKALang[strings.ToLower(code)]; ok {
		code = e.code
	}
	if tag, err := xlanguage.Parse(code); err == nil {
		base, _ := tag.Base()
		return base.String()
	}
	head, _, _ := strings.Cut(strings.ReplaceAll(code, "_", "-"), "-")
	return strings.ToLower(head)
}

// SamePrimary reports whether two codes share a primary language subtag.
func SamePrimary(a, b string) bool {
	pa, pb := Primary(a), Primary(b)
	return pa != "" && pa == pb
}

// MatchesAudio reports whether an audio track tagged audio (as found in the
// snapshot, which mixes le-utils and KA spellings) is in the target language.
func MatchesAudio(audio, target string) bool {
	audio = strings.ToLower(strings.TrimSpace(audio))
	if audio == "" {
		return false
	}
	if audio == strings.ToLower(strings.TrimSpace(target)) {
		return true
	}
	return audio == strings.ToLower(ToKALang(target)) || strings.EqualFold(FromKALang(audio), Normalize(target))
}
