package models

import "strings"

// Institution is one securities firm known to the aggregation backend,
// keyed by its numeric institution code.
type Institution struct {
	Code      string
	Name      string
	ShortName string
}

// DefaultInstitutionCode is returned when a firm name cannot be resolved.
const DefaultInstitutionCode = "0240"

// Securities-firm institution codes as registered with the aggregation
// backend.
var institutions = []Institution{
	{Code: "0209", Name: "유안타증권"},
	{Code: "0218", Name: "KB증권"},
	{Code: "0225", Name: "IBK투자증권"},
	{Code: "0227", Name: "다올투자증권", ShortName: "다올투자"},
	{Code: "0238", Name: "미래에셋증권", ShortName: "미래에셋"},
	{Code: "0240", Name: "삼성증권"},
	{Code: "0243", Name: "한국투자증권", ShortName: "한투"},
	{Code: "0247", Name: "NH투자증권", ShortName: "NH투자"},
	{Code: "1247", Name: "NH투자증권 모바일증권 나무", ShortName: "NH나무"},
	{Code: "0261", Name: "교보증권"},
	{Code: "0262", Name: "하이투자증권"},
	{Code: "0264", Name: "키움증권"},
	{Code: "0265", Name: "이베스트투자증권"},
	{Code: "0266", Name: "SK증권"},
	{Code: "0267", Name: "대신증권"},
	{Code: "0269", Name: "한화투자증권"},
	{Code: "0270", Name: "하나증권", ShortName: "하나금투"},
	{Code: "0278", Name: "신한금융투자", ShortName: "신한투자"},
	{Code: "0279", Name: "DB금융투자"},
	{Code: "0280", Name: "유진투자증권"},
	{Code: "0287", Name: "메리츠증권"},
	{Code: "0291", Name: "신영증권"},
}

// FindInstitutionByCode looks up a firm by institution code.
func FindInstitutionByCode(code string) (Institution, bool) {
	for _, inst := range institutions {
		if inst.Code == code {
			return inst, true
		}
	}
	return Institution{}, false
}

// FindInstitutionByName looks up a firm by its full name, tolerating extra
// whitespace.
func FindInstitutionByName(name string) (Institution, bool) {
	trimmed := strings.TrimSpace(name)
	for _, inst := range institutions {
		if inst.Name == trimmed {
			return inst, true
		}
	}
	return Institution{}, false
}

// InstitutionCodeForName resolves a firm display name to its institution
// code, falling back to DefaultInstitutionCode for unknown names.
func InstitutionCodeForName(name string) string {
	if inst, ok := FindInstitutionByName(name); ok {
		return inst.Code
	}
	return DefaultInstitutionCode
}

// InstitutionShortName returns the abbreviated display name for a firm:
// the registered short name, the part before "증권", or the first two
// characters.
func InstitutionShortName(name string) string {
	if inst, ok := FindInstitutionByName(name); ok && inst.ShortName != "" {
		return inst.ShortName
	}
	if idx := strings.Index(name, "증권"); idx > 0 {
		return name[:idx]
	}
	runes := []rune(name)
	if len(runes) > 2 {
		return string(runes[:2])
	}
	return name
}
