package geoip

import (
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"

	"github.com/keyward-io/keyward/internal/domain/verification"
	"github.com/keyward-io/keyward/internal/shared/logger"
)

// alpha2ToAlpha3 covers the ISO 3166-1 conversion for the codes MaxMind
// emits. Unknown codes fall through with an empty alpha-3, which simply
// never matches a country blacklist entry.
var alpha2ToAlpha3 = map[string]string{
	"AD": "AND", "AE": "ARE", "AF": "AFG", "AG": "ATG", "AL": "ALB",
	"AM": "ARM", "AO": "AGO", "AR": "ARG", "AT": "AUT", "AU": "AUS",
	"AZ": "AZE", "BA": "BIH", "BD": "BGD", "BE": "BEL", "BF": "BFA",
	"BG": "BGR", "BH": "BHR", "BI": "BDI", "BJ": "BEN", "BN": "BRN",
	"BO": "BOL", "BR": "BRA", "BS": "BHS", "BT": "BTN", "BW": "BWA",
	"BY": "BLR", "BZ": "BLZ", "CA": "CAN", "CD": "COD", "CF": "CAF",
	"CG": "COG", "CH": "CHE", "CI": "CIV", "CL": "CHL", "CM": "CMR",
	"CN": "CHN", "CO": "COL", "CR": "CRI", "CU": "CUB", "CV": "CPV",
	"CY": "CYP", "CZ": "CZE", "DE": "DEU", "DJ": "DJI", "DK": "DNK",
	"DM": "DMA", "DO": "DOM", "DZ": "DZA", "EC": "ECU", "EE": "EST",
	"EG": "EGY", "ER": "ERI", "ES": "ESP", "ET": "ETH", "FI": "FIN",
	"FJ": "FJI", "FM": "FSM", "FR": "FRA", "GA": "GAB", "GB": "GBR",
	"GD": "GRD", "GE": "GEO", "GH": "GHA", "GM": "GMB", "GN": "GIN",
	"GQ": "GNQ", "GR": "GRC", "GT": "GTM", "GW": "GNB", "GY": "GUY",
	"HN": "HND", "HR": "HRV", "HT": "HTI", "HU": "HUN", "ID": "IDN",
	"IE": "IRL", "IL": "ISR", "IN": "IND", "IQ": "IRQ", "IR": "IRN",
	"IS": "ISL", "IT": "ITA", "JM": "JAM", "JO": "JOR", "JP": "JPN",
	"KE": "KEN", "KG": "KGZ", "KH": "KHM", "KI": "KIR", "KM": "COM",
	"KN": "KNA", "KP": "PRK", "KR": "KOR", "KW": "KWT", "KZ": "KAZ",
	"LA": "LAO", "LB": "LBN", "LC": "LCA", "LI": "LIE", "LK": "LKA",
	"LR": "LBR", "LS": "LSO", "LT": "LTU", "LU": "LUX", "LV": "LVA",
	"LY": "LBY", "MA": "MAR", "MC": "MCO", "MD": "MDA", "ME": "MNE",
	"MG": "MDG", "MH": "MHL", "MK": "MKD", "ML": "MLI", "MM": "MMR",
	"MN": "MNG", "MR": "MRT", "MT": "MLT", "MU": "MUS", "MV": "MDV",
	"MW": "MWI", "MX": "MEX", "MY": "MYS", "MZ": "MOZ", "NA": "NAM",
	"NE": "NER", "NG": "NGA", "NI": "NIC", "NL": "NLD", "NO": "NOR",
	"NP": "NPL", "NR": "NRU", "NZ": "NZL", "OM": "OMN", "PA": "PAN",
	"PE": "PER", "PG": "PNG", "PH": "PHL", "PK": "PAK", "PL": "POL",
	"PT": "PRT", "PW": "PLW", "PY": "PRY", "QA": "QAT", "RO": "ROU",
	"RS": "SRB", "RU": "RUS", "RW": "RWA", "SA": "SAU", "SB": "SLB",
	"SC": "SYC", "SD": "SDN", "SE": "SWE", "SG": "SGP", "SI": "SVN",
	"SK": "SVK", "SL": "SLE", "SM": "SMR", "SN": "SEN", "SO": "SOM",
	"SR": "SUR", "SS": "SSD", "ST": "STP", "SV": "SLV", "SY": "SYR",
	"SZ": "SWZ", "TD": "TCD", "TG": "TGO", "TH": "THA", "TJ": "TJK",
	"TL": "TLS", "TM": "TKM", "TN": "TUN", "TO": "TON", "TR": "TUR",
	"TT": "TTO", "TV": "TUV", "TW": "TWN", "TZ": "TZA", "UA": "UKR",
	"UG": "UGA", "US": "USA", "UY": "URY", "UZ": "UZB", "VC": "VCT",
	"VE": "VEN", "VN": "VNM", "VU": "VUT", "WS": "WSM", "YE": "YEM",
	"ZA": "ZAF", "ZM": "ZMB", "ZW": "ZWE",
}

// MaxMindResolver resolves IPs against a local MaxMind GeoLite2 / GeoIP2
// country database.
type MaxMindResolver struct {
	reader *geoip2.Reader
	logger logger.Interface
}

func NewMaxMindResolver(databasePath string, log logger.Interface) (*MaxMindResolver, error) {
	reader, err := geoip2.Open(databasePath)
	if err != nil {
		return nil, fmt.Errorf("open geoip database: %w", err)
	}
	return &MaxMindResolver{reader: reader, logger: log}, nil
}

func (r *MaxMindResolver) Resolve(ip string) *verification.GeoData {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return nil
	}

	record, err := r.reader.Country(parsed)
	if err != nil {
		r.logger.Debugw("geoip lookup failed", "ip", ip, "error", err)
		return nil
	}

	alpha2 := record.Country.IsoCode
	if alpha2 == "" {
		return nil
	}

	return &verification.GeoData{
		Alpha2:  alpha2,
		Alpha3:  alpha2ToAlpha3[alpha2],
		Country: record.Country.Names["en"],
	}
}

func (r *MaxMindResolver) Close() error {
	return r.reader.Close()
}
