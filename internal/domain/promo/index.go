package promo

import (
	"bufio"
	"io"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Valid promo codes are 8-10 characters; anything else is rejected before
// the index is even consulted.
const (
	minCodeLen = 8
	maxCodeLen = 10
)

const indexFPR = 0.001

// featuredRules maps well-known codes to their specific discount rules.
// Codes present in the shipped list but not featured fall back to
// defaultRule.
var featuredRules = map[string]Rule{
	"BEMVINDO1": {DiscountType: DiscountPercentage, Value: decimal.NewFromInt(15), Description: "Boas-vindas: 15% off"},
	"DEZREAIS1": {DiscountType: DiscountFixed, Value: decimal.NewFromInt(10), Description: "R$ 10 de desconto"},
	"PRIMEIRA1": {DiscountType: DiscountFreeLowest, Value: decimal.Zero, MinItems: 2, Description: "Item mais barato grátis (mín. 2 itens)"},
	"ANIVERSARI": {DiscountType: DiscountFreeLowest, Value: decimal.Zero, Description: "Aniversário: item mais barato grátis"},
}

var defaultRule = Rule{
	DiscountType: DiscountPercentage,
	Value:        decimal.NewFromInt(10),
	Description:  "Código promocional: 10% off",
}

// Index answers "is this promo code valid, and what does it grant". Code
// membership uses a bloom filter over the shipped code list, so lookups are
// O(1) regardless of list size; the configured false-positive rate (0.1%)
// is acceptable for a promo lookup. Immutable after Load.
type Index struct {
	filter *bloom.BloomFilter
	count  int
}

// Load reads a newline-delimited promo code list from r and builds the
// membership index. Codes outside the valid length range are skipped.
func Load(r io.Reader) (*Index, error) {
	var codes []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		code := strings.TrimSpace(scanner.Text())
		if len(code) < minCodeLen || len(code) > maxCodeLen {
			continue
		}
		codes = append(codes, code)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "scan promo codes")
	}
	if len(codes) == 0 {
		return nil, errors.New("promo code list is empty")
	}

	filter := bloom.NewWithEstimates(uint(len(codes)), indexFPR)
	for _, code := range codes {
		filter.AddString(code)
	}
	return &Index{filter: filter, count: len(codes)}, nil
}

// Count returns the number of codes loaded into the index.
func (ix *Index) Count() int {
	return ix.count
}

// Lookup resolves a code to its discount rule. Unknown codes yield
// ErrInvalidCode. Matching is case-insensitive; codes are stored uppercase.
func (ix *Index) Lookup(code string) (*Rule, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) < minCodeLen || len(code) > maxCodeLen {
		return nil, ErrInvalidCode
	}
	if !ix.filter.TestString(code) {
		return nil, ErrInvalidCode
	}

	rule, ok := featuredRules[code]
	if !ok {
		rule = defaultRule
	}
	rule.Code = code
	return &rule, nil
}
