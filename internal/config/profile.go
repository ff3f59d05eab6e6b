package config

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-ledger/internal/models"
)

// Amount pattern names, tried in the order a profile lists them.
const (
	PatternColumnar = "columnar"
	PatternTriple   = "triple"
	PatternPair     = "pair"
	PatternSingle   = "single"
	PatternEmbedded = "embedded"
)

// BalanceOrder is the direction balances run inside one date group of the output.
type BalanceOrder string

const (
	BalanceAscending  BalanceOrder = "ascending"
	BalanceDescending BalanceOrder = "descending"
)

// DateFormat pairs an anchor regex (group 1 = date token, group 2 = rest of line)
// with the Go layout used to parse the token.
type DateFormat struct {
	Pattern *regexp.Regexp
	Layout  string
}

// Profile is the compiled, read-only configuration for one statement layout.
// Profiles are shared between concurrent parses and must not be mutated.
type Profile struct {
	Bank            models.BankType
	Name            string
	ReferencePrefix string
	DetectMarkers   []string

	DateFormats []DateFormat
	Lookahead   int

	AmountPatterns  []string
	CurrencySymbols []string
	Placeholders    []string
	// MaxAmount caps a sane amount; larger tokens parse as zero. Zero disables the cap.
	MaxAmount decimal.Decimal

	UnsignedDirection    models.Direction
	BalanceOrder         BalanceOrder
	MinDescriptionLength int

	FeeCategory string
	FeeMarker   string
	FeeToken    string

	// Categories is sorted longest first so suffix matching prefers the longest label.
	Categories          []string
	CreditKeywords      []string
	DebitKeywords       []string
	CreditCategoryWords []string
	DebitCategoryWords  []string
	NoiseBanners        []string

	Boilerplate        []*regexp.Regexp
	Boundaries         []*regexp.Regexp
	IgnoreContinuation []*regexp.Regexp
	Separators         []string

	AccountNumber   *regexp.Regexp
	StatementPeriod *regexp.Regexp
}

// HasPattern reports whether the profile enables the named amount pattern.
func (p *Profile) HasPattern(name string) bool {
	for _, n := range p.AmountPatterns {
		if n == name {
			return true
		}
	}
	return false
}

type dateFormatSpec struct {
	Pattern string `yaml:"pattern"`
	Layout  string `yaml:"layout"`
}

// profileSpec is the YAML shape of a bank profile.
type profileSpec struct {
	ID                   string           `yaml:"id"`
	Name                 string           `yaml:"name"`
	ReferencePrefix      string           `yaml:"referencePrefix"`
	Detect               []string         `yaml:"detect"`
	DateFormats          []dateFormatSpec `yaml:"dateFormats"`
	Lookahead            int              `yaml:"lookahead"`
	AmountPatterns       []string         `yaml:"amountPatterns"`
	CurrencySymbols      []string         `yaml:"currencySymbols"`
	Placeholders         []string         `yaml:"placeholders"`
	MaxAmount            string           `yaml:"maxAmount"`
	UnsignedDirection    string           `yaml:"unsignedDirection"`
	BalanceOrder         string           `yaml:"balanceOrder"`
	MinDescriptionLength int              `yaml:"minDescriptionLength"`
	FeeCategory          string           `yaml:"feeCategory"`
	FeeMarker            string           `yaml:"feeMarker"`
	FeeToken             string           `yaml:"feeToken"`
	AccountNumber        string           `yaml:"accountNumber"`
	StatementPeriod      string           `yaml:"statementPeriod"`
	Categories           []string         `yaml:"categories"`
	CreditKeywords       []string         `yaml:"creditKeywords"`
	DebitKeywords        []string         `yaml:"debitKeywords"`
	CreditCategoryWords  []string         `yaml:"creditCategoryWords"`
	DebitCategoryWords   []string         `yaml:"debitCategoryWords"`
	Noise                []string         `yaml:"noise"`
	Boilerplate          []string         `yaml:"boilerplate"`
	Boundaries           []string         `yaml:"boundaries"`
	IgnoreContinuation   []string         `yaml:"ignoreContinuation"`
	Separators           []string         `yaml:"separators"`
}

func (s profileSpec) compile() (*Profile, error) {
	if s.ID == "" {
		return nil, fmt.Errorf("bank profile without id")
	}
	p := &Profile{
		Bank:                 models.BankType(strings.ToLower(s.ID)),
		Name:                 s.Name,
		ReferencePrefix:      s.ReferencePrefix,
		DetectMarkers:        s.Detect,
		Lookahead:            s.Lookahead,
		CurrencySymbols:      s.CurrencySymbols,
		Placeholders:         s.Placeholders,
		MinDescriptionLength: s.MinDescriptionLength,
		FeeCategory:          s.FeeCategory,
		FeeMarker:            s.FeeMarker,
		FeeToken:             strings.ToLower(s.FeeToken),
		Categories:           append([]string(nil), s.Categories...),
		CreditKeywords:       lowerAll(s.CreditKeywords),
		DebitKeywords:        lowerAll(s.DebitKeywords),
		CreditCategoryWords:  lowerAll(s.CreditCategoryWords),
		DebitCategoryWords:   lowerAll(s.DebitCategoryWords),
		NoiseBanners:         lowerAll(s.Noise),
		Separators:           s.Separators,
	}
	if p.Name == "" {
		p.Name = s.ID
	}
	if p.ReferencePrefix == "" {
		p.ReferencePrefix = strings.ToUpper(s.ID)
	}
	if p.Lookahead < 0 {
		return nil, fmt.Errorf("bank %s: negative lookahead", s.ID)
	}

	if len(s.DateFormats) == 0 {
		return nil, fmt.Errorf("bank %s: no date formats", s.ID)
	}
	for _, df := range s.DateFormats {
		re, err := regexp.Compile(df.Pattern)
		if err != nil {
			return nil, fmt.Errorf("bank %s: date pattern %q: %w", s.ID, df.Pattern, err)
		}
		if re.NumSubexp() < 2 {
			return nil, fmt.Errorf("bank %s: date pattern %q needs two groups", s.ID, df.Pattern)
		}
		if df.Layout == "" {
			return nil, fmt.Errorf("bank %s: date pattern %q has no layout", s.ID, df.Pattern)
		}
		p.DateFormats = append(p.DateFormats, DateFormat{Pattern: re, Layout: df.Layout})
	}

	if len(s.AmountPatterns) == 0 {
		s.AmountPatterns = []string{PatternTriple, PatternPair, PatternSingle, PatternEmbedded}
	}
	for _, name := range s.AmountPatterns {
		switch name {
		case PatternColumnar, PatternTriple, PatternPair, PatternSingle, PatternEmbedded:
			p.AmountPatterns = append(p.AmountPatterns, name)
		default:
			return nil, fmt.Errorf("bank %s: unknown amount pattern %q", s.ID, name)
		}
	}

	if s.MaxAmount != "" {
		limit, err := decimal.NewFromString(s.MaxAmount)
		if err != nil {
			return nil, fmt.Errorf("bank %s: maxAmount: %w", s.ID, err)
		}
		p.MaxAmount = limit
	}

	switch models.Direction(strings.ToLower(s.UnsignedDirection)) {
	case models.Credit:
		p.UnsignedDirection = models.Credit
	case models.Debit, "":
		p.UnsignedDirection = models.Debit
	default:
		return nil, fmt.Errorf("bank %s: unsignedDirection %q", s.ID, s.UnsignedDirection)
	}

	switch BalanceOrder(strings.ToLower(s.BalanceOrder)) {
	case BalanceDescending:
		p.BalanceOrder = BalanceDescending
	case BalanceAscending, "":
		p.BalanceOrder = BalanceAscending
	default:
		return nil, fmt.Errorf("bank %s: balanceOrder %q", s.ID, s.BalanceOrder)
	}

	var err error
	if p.Boilerplate, err = compileAll(s.Boilerplate); err != nil {
		return nil, fmt.Errorf("bank %s: boilerplate: %w", s.ID, err)
	}
	if p.Boundaries, err = compileAll(s.Boundaries); err != nil {
		return nil, fmt.Errorf("bank %s: boundaries: %w", s.ID, err)
	}
	if p.IgnoreContinuation, err = compileAll(s.IgnoreContinuation); err != nil {
		return nil, fmt.Errorf("bank %s: ignoreContinuation: %w", s.ID, err)
	}
	if s.AccountNumber != "" {
		if p.AccountNumber, err = regexp.Compile(s.AccountNumber); err != nil {
			return nil, fmt.Errorf("bank %s: accountNumber: %w", s.ID, err)
		}
	}
	if s.StatementPeriod != "" {
		if p.StatementPeriod, err = regexp.Compile(s.StatementPeriod); err != nil {
			return nil, fmt.Errorf("bank %s: statementPeriod: %w", s.ID, err)
		}
	}

	sort.SliceStable(p.Categories, func(i, j int) bool {
		return len(p.Categories[i]) > len(p.Categories[j])
	})

	return p, nil
}

func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, pat := range patterns {
		re, err := regexp.Compile(pat)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", pat, err)
		}
		out = append(out, re)
	}
	return out, nil
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.ToLower(s))
	}
	return out
}
