package promo

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testItems() []Item {
	return []Item{
		{ItemID: "1", Price: decimal.RequireFromString("32.90"), Quantity: 2},
		{ItemID: "3", Price: decimal.RequireFromString("5.90"), Quantity: 1},
	}
}

func TestApply_Percentage(t *testing.T) {
	rule := &Rule{DiscountType: DiscountPercentage, Value: decimal.NewFromInt(10)}

	// 10% of 71.70, rounded to cents.
	got, err := Apply(rule, testItems())
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("7.17").Equal(got), "got %s", got)
}

func TestApply_Fixed(t *testing.T) {
	rule := &Rule{DiscountType: DiscountFixed, Value: decimal.NewFromInt(10)}

	got, err := Apply(rule, testItems())
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(10).Equal(got))
}

func TestApply_FixedCappedAtSubtotal(t *testing.T) {
	rule := &Rule{DiscountType: DiscountFixed, Value: decimal.NewFromInt(500)}

	got, err := Apply(rule, testItems())
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("71.70").Equal(got))
}

func TestApply_FreeLowest(t *testing.T) {
	rule := &Rule{DiscountType: DiscountFreeLowest}

	got, err := Apply(rule, testItems())
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("5.90").Equal(got))
}

func TestApply_FreeLowest_EmptyCart(t *testing.T) {
	rule := &Rule{DiscountType: DiscountFreeLowest}

	got, err := Apply(rule, nil)
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestApply_MinItemsNotMet(t *testing.T) {
	rule := &Rule{DiscountType: DiscountFreeLowest, MinItems: 5}

	_, err := Apply(rule, testItems())
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestApply_MinItemsCountsQuantities(t *testing.T) {
	rule := &Rule{DiscountType: DiscountFreeLowest, MinItems: 3}

	// Two lines, quantities 2 + 1 = 3.
	_, err := Apply(rule, testItems())
	assert.NoError(t, err)
}

func TestApply_UnsupportedType(t *testing.T) {
	rule := &Rule{DiscountType: DiscountType("bogo")}

	_, err := Apply(rule, testItems())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCode)
}

const codeList = "BEMVINDO1\nDEZREAIS1\nPRIMEIRA1\nANIVERSARI\nFRETEGRA1\n"

func loadIndex(t *testing.T) *Index {
	t.Helper()
	ix, err := Load(strings.NewReader(codeList))
	require.NoError(t, err)
	return ix
}

func TestLoad(t *testing.T) {
	ix := loadIndex(t)
	assert.Equal(t, 5, ix.Count())
}

func TestLoad_SkipsInvalidLengths(t *testing.T) {
	ix, err := Load(strings.NewReader("OK\nBEMVINDO1\nWAYTOOLONGFORACODE\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, ix.Count())
}

func TestLoad_Empty(t *testing.T) {
	_, err := Load(strings.NewReader(""))
	assert.Error(t, err)
}

func TestLookup_Featured(t *testing.T) {
	ix := loadIndex(t)

	rule, err := ix.Lookup("BEMVINDO1")
	require.NoError(t, err)
	assert.Equal(t, "BEMVINDO1", rule.Code)
	assert.Equal(t, DiscountPercentage, rule.DiscountType)
	assert.True(t, decimal.NewFromInt(15).Equal(rule.Value))
}

func TestLookup_DefaultRule(t *testing.T) {
	ix := loadIndex(t)

	// In the list but not featured: generic 10% off.
	rule, err := ix.Lookup("FRETEGRA1")
	require.NoError(t, err)
	assert.Equal(t, "FRETEGRA1", rule.Code)
	assert.Equal(t, DiscountPercentage, rule.DiscountType)
	assert.True(t, decimal.NewFromInt(10).Equal(rule.Value))
}

func TestLookup_CaseInsensitive(t *testing.T) {
	ix := loadIndex(t)

	rule, err := ix.Lookup("  bemvindo1 ")
	require.NoError(t, err)
	assert.Equal(t, "BEMVINDO1", rule.Code)
}

func TestLookup_Unknown(t *testing.T) {
	ix := loadIndex(t)

	_, err := ix.Lookup("NAOEXISTE1")
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestLookup_LengthRejected(t *testing.T) {
	ix := loadIndex(t)

	for _, code := range []string{"", "CURTO", "ESTECODIGOEMUITOLONGO"} {
		_, err := ix.Lookup(code)
		assert.ErrorIs(t, err, ErrInvalidCode, "code %q", code)
	}
}

func TestLookup_MinItemsRuleRoundTrip(t *testing.T) {
	ix := loadIndex(t)

	rule, err := ix.Lookup("PRIMEIRA1")
	require.NoError(t, err)
	assert.Equal(t, 2, rule.MinItems)

	_, err = Apply(rule, []Item{{ItemID: "1", Price: decimal.NewFromInt(10), Quantity: 1}})
	assert.ErrorIs(t, err, ErrInvalidCode)
}
