package tld

import "github.com/shopspring/decimal"

// Credibility tables. Loaded once at init, never mutated at runtime; the
// scorer does table lookups only, no network access. Scores follow the
// 5-tier classification: registration-restricted zones score highest,
// free-registration zones score negative.

func score(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Tier 1 (+0.20): validated-registration TLDs. Nonprofit registries that
// verify status, government, accredited education.
var tier1TLDs = map[string]decimal.Decimal{
	"ngo":        score("0.20"),
	"ong":        score("0.20"),
	"foundation": score("0.20"),
	"charity":    score("0.20"),
	"gov":        score("0.20"),
	"edu":        score("0.20"),
	"int":        score("0.20"),
}

// Tier 1 second-level zones (government and academic sub-zones of country
// registries, plus EU institutions). Checked before the single-label TLD.
var tier1SecondLevel = map[string]struct{}{
	"gov.bg":    {},
	"gov.ro":    {},
	"gov.pl":    {},
	"gov.cz":    {},
	"gov.de":    {},
	"gov.fr":    {},
	"gov.uk":    {},
	"edu.bg":    {},
	"edu.ro":    {},
	"edu.pl":    {},
	"edu.cz":    {},
	"ac.bg":     {},
	"ac.ro":     {},
	"ac.pl":     {},
	"ac.cz":     {},
	"ac.uk":     {},
	"europa.eu": {},
}

// Tier 2 (+0.15): general nonprofit, target-region country codes (including
// internationalized Cyrillic labels), funding-specific TLDs.
var tier2TLDs = map[string]decimal.Decimal{
	"org": score("0.15"),
	"eu":  score("0.15"),
	"ею":  score("0.15"), // Cyrillic .eu
	"bg":  score("0.15"),
	"бг":  score("0.15"), // Cyrillic .bg
	"ro":  score("0.15"),
	"pl":  score("0.15"),
	"cz":  score("0.15"),
	"sk":  score("0.15"),
	"de":  score("0.15"),
	"fr":  score("0.15"),
	"gr":  score("0.15"),
	"hu":  score("0.15"),
	"at":  score("0.15"),
	"it":  score("0.15"),
	"es":  score("0.15"),
	"fund":  score("0.15"),
	"gives": score("0.15"),
}

// Tier 3 (+0.08): generic commercial/informational TLDs and non-target
// country codes.
var tier3TLDs = map[string]decimal.Decimal{
	"com":       score("0.08"),
	"net":       score("0.08"),
	"info":      score("0.08"),
	"education": score("0.08"),
	"us":        score("0.08"),
	"ca":        score("0.08"),
	"au":        score("0.08"),
}

// Tier 4 (0.00): low-restriction commodity TLDs with no inherent signal.
var tier4TLDs = map[string]decimal.Decimal{
	"biz": score("0.00"),
	"co":  score("0.00"),
	"io":  score("0.00"),
	"me":  score("0.00"),
}

// Tier 5 (negative): TLDs statistically dominated by spam and phishing.
// Free-registration zones carry the absolute minimum.
var tier5TLDs = map[string]decimal.Decimal{
	"tk": score("-0.30"),
	"ml": score("-0.30"),
	"ga": score("-0.30"),
	"cf": score("-0.30"),
	"gq": score("-0.30"),

	"xyz":  score("-0.20"),
	"top":  score("-0.20"),
	"icu":  score("-0.20"),
	"buzz": score("-0.20"),

	"loan":  score("-0.25"),
	"click": score("-0.15"),
	"cam":   score("-0.15"),
	"pw":    score("-0.15"),
	"shop":  score("-0.10"),
}

// autoRejectTLDs is the subset of Tier 5 designated for rejection before any
// scoring or dedup work. Limited to the most abused zones so that low-scoring
// but occasionally legitimate Tier 5 domains still get judged.
var autoRejectTLDs = map[string]struct{}{
	"tk":  {},
	"ml":  {},
	"ga":  {},
	"cf":  {},
	"gq":  {},
	"xyz": {},
	"top": {},
}
