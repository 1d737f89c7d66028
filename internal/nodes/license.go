package nodes

import "strings"

// License ids as understood by the downstream platform.
const (
	LicenseCCBY               = "CC BY"
	LicenseCCBYNC             = "CC BY-NC"
	LicenseCCBYNCND           = "CC BY-NC-ND"
	LicenseCCBYNCSA           = "CC BY-NC-SA"
	LicenseCCBYSA             = "CC BY-SA"
	LicenseSpecialPermissions = "Special Permissions"
)

// CopyrightHolder is recorded on every license kachef emits.
const CopyrightHolder = "Khan Academy"

// License is a resolved content license.
type License struct {
	ID              string
	CopyrightHolder string
	Description     string
}

const collegeBoard = "Non-commercial/non-Creative Commons (College Board)"

// licenseTable maps snapshot license strings, old and new spellings, to
// licenses. Anything else is rejected.
var licenseTable = map[string]License{
	"CC BY":                    {ID: LicenseCCBY},
	"CC BY-NC":                 {ID: LicenseCCBYNC},
	"CC BY-NC-ND":              {ID: LicenseCCBYNCND},
	"CC BY-NC-SA (KA default)": {ID: LicenseCCBYNCSA},
	"CC BY-SA":                 {ID: LicenseCCBYSA},
	collegeBoard:               {ID: LicenseSpecialPermissions, Description: collegeBoard},
	"cc-by-nc-nd":              {ID: LicenseCCBYNCND},
	"cc-by-nc-sa":              {ID: LicenseCCBYNCSA},
	"cb-ka-copyright":          {ID: LicenseSpecialPermissions, Description: collegeBoard},
}

// ExerciseLicense is attached to every exercise.
var ExerciseLicense = License{
	ID:              LicenseSpecialPermissions,
	CopyrightHolder: CopyrightHolder,
	Description:     "Permission granted to distribute through Kolibri for non-commercial use",
}

// ResolveLicense maps a snapshot license string.
func ResolveLicense(name string) (License, bool) {
	lic, ok := licenseTable[strings.TrimSpace(name)]
	if !ok {
		return License{}, false
	}
	lic.CopyrightHolder = CopyrightHolder
	return lic, true
}
