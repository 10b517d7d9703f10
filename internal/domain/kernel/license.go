package kernel

import "strings"

type License string

const (
	LicenseOpen        License = "open"
	LicenseAttribution License = "attribution"
	LicensePermission  License = "permission"
)

var licenseLabels = map[License]string{
	LicenseOpen:        "Open for remixing",
	LicenseAttribution: "Attribution required",
	LicensePermission:  "Ask permission",
}

// Licenses lists accepted values in display order.
func Licenses() []License {
	return []License{LicenseOpen, LicenseAttribution, LicensePermission}
}

func (l License) Valid() bool {
	_, ok := licenseLabels[l]
	return ok
}

// Label is the human label, or the raw value for rows written before the enum was closed.
func (l License) Label() string {
	if label, ok := licenseLabels[l]; ok {
		return label
	}
	return string(l)
}

func ParseLicense(raw string) (License, bool) {
	v := License(strings.ToLower(strings.TrimSpace(raw)))
	if v == "" {
		return LicenseOpen, true
	}
	return v, v.Valid()
}
