package internal

import (
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Currency formats money amounts for one currency
type Currency struct {
	Code    string // "USD", "EUR", or a free-form label such as "pts"
	symbol  string
	prefix  bool
	printer *message.Printer
}

// symbolOverrides provides custom symbols where x/text defaults aren't ideal
var symbolOverrides = map[string]string{
	"SEK": "kr",
	"NOK": "kr",
	"DKK": "kr",
	"ISK": "kr",
}

// symbolAliases maps the bare symbols users and receipts often write to ISO codes
var symbolAliases = map[string]string{
	"$":   "USD",
	"US$": "USD",
	"€":   "EUR",
	"£":   "GBP",
	"¥":   "JPY",
	"₹":   "INR",
	"R$":  "BRL",
}

// defaultLocaleForCurrency picks a "home" locale for number formatting
var defaultLocaleForCurrency = map[string]language.Tag{
	"SEK": language.Swedish,
	"USD": language.AmericanEnglish,
	"EUR": language.German,
	"GBP": language.BritishEnglish,
	"NOK": language.Norwegian,
	"DKK": language.Danish,
	"CHF": language.German,
	"JPY": language.Japanese,
	"CAD": language.CanadianFrench,
	"AUD": language.MustParse("en-AU"),
	"BRL": language.BrazilianPortuguese,
	"INR": language.MustParse("en-IN"),
	"PLN": language.Polish,
}

// prefixCurrencies place the symbol before the amount. x/text does not
// expose CLDR symbol positioning, so this list is maintained by hand.
var prefixCurrencies = map[string]bool{
	"USD": true, "GBP": true, "JPY": true, "CAD": true, "AUD": true,
	"MXN": true, "HKD": true, "SGD": true, "NZD": true, "ZAR": true, "INR": true,
}

// GetCurrency returns the Currency for a code or symbol. Unknown labels
// are kept verbatim and used as their own suffix symbol.
func GetCurrency(code string) Currency {
	code = strings.TrimSpace(code)
	if code == "" {
		code = "USD"
	}
	if iso, ok := symbolAliases[code]; ok {
		code = iso
	}
	upper := strings.ToUpper(code)

	unit, err := currency.ParseISO(upper)
	if err != nil {
		return Currency{
			Code:    code,
			symbol:  code,
			printer: message.NewPrinter(language.English),
		}
	}

	tag, ok := defaultLocaleForCurrency[upper]
	if !ok {
		tag = language.English
	}
	c := Currency{
		Code:    upper,
		prefix:  prefixCurrencies[upper],
		printer: message.NewPrinter(tag),
	}
	if sym, ok := symbolOverrides[upper]; ok {
		c.symbol = sym
	} else {
		c.symbol = c.printer.Sprint(currency.NarrowSymbol(unit))
	}
	return c
}

// DetectSystemCurrency returns the ISO code for the region of the system
// locale, or "" when it cannot be determined.
func DetectSystemCurrency() string {
	locale := detectSystemLocale()
	if locale == "" {
		return ""
	}
	return currencyFromLocale(locale)
}

// currencyFromLocale maps a POSIX locale to its region's currency.
// Examples: "sv_SE.UTF-8" -> "SEK", "pt_BR" -> "BRL", "en" -> ""
func currencyFromLocale(locale string) string {
	base := locale
	if idx := strings.IndexAny(base, ".@"); idx != -1 {
		base = base[:idx]
	}
	tag, err := language.Parse(strings.Replace(base, "_", "-", 1))
	if err != nil {
		return ""
	}
	_, _, region := tag.Raw()
	if region.String() == "" || region.String() == "ZZ" {
		return ""
	}
	unit, ok := currency.FromRegion(region)
	if !ok {
		return ""
	}
	return unit.String()
}

func (c Currency) amount(v float64) string {
	return c.printer.Sprint(number.Decimal(v, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

// Format renders an amount with two decimals and the currency symbol
func (c Currency) Format(v float64) string {
	if c.prefix {
		return c.symbol + c.amount(v)
	}
	return c.amount(v) + " " + c.symbol
}

// FormatCost renders a record's cost in its own currency.
func FormatCost(sub Subscription) string {
	return GetCurrency(sub.Currency).Format(sub.Cost)
}
