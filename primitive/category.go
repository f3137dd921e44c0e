package primitive

import (
	"fmt"
	"strings"
)

// CategoryEnum is a set of allowed scalar coercions, combined with bitwise or.
type CategoryEnum int

type ConversionPair struct {
	From, To KindEnum
}

const (
	CategorySafeNumber   CategoryEnum = 1 << iota // int32, int64, float widening without precision loss
	CategoryUnsafeNumber                          // narrowing or precision-losing number conversions (range checked)
	CategoryTextNumber                            // number <-> string: textual number representation
	CategoryNumericBool                           // integer <-> bool: 0, 1 representation of boolean values
	CategoryTextualBool                           // string <-> bool: yes, no, on, off, true, false representation of boolean values
	CategoryDatetime                              // string <-> time: textual date representation in one of the configured formats
	CategoryTimestamp                             // integer(epoch millis) <-> time: numeric timestamp representation
	CategoryBinary                                // string <-> bytes: base64 or raw text representation of binary values

	CategoryAll  CategoryEnum = (1 << iota) - 1 // all categories combined
	CategoryNone CategoryEnum = 0               // no categories selected
)

var categoryNames = []struct {
	name string
	cat  CategoryEnum
}{
	{"safe_number", CategorySafeNumber},
	{"unsafe_number", CategoryUnsafeNumber},
	{"text_number", CategoryTextNumber},
	{"numeric_bool", CategoryNumericBool},
	{"textual_bool", CategoryTextualBool},
	{"datetime", CategoryDatetime},
	{"timestamp", CategoryTimestamp},
	{"binary", CategoryBinary},
}

var conversionPairs map[CategoryEnum]map[ConversionPair]struct{}

func init() {
	conversionPairs = make(map[CategoryEnum]map[ConversionPair]struct{})

	conversionPairs[CategorySafeNumber] = map[ConversionPair]struct{}{
		{KindInt32, KindInt64}:     {},
		{KindInt32, KindFloat64}:   {}, // int32 is wider than float32 mantissa
		{KindFloat32, KindFloat64}: {},
	}

	// CategoryUnsafeNumber: every other number pair
	conversionPairs[CategoryUnsafeNumber] = map[ConversionPair]struct{}{}
	forEachKind(func(from KindEnum) {
		forEachKind(func(to KindEnum) {
			if !from.IsNumber() || !to.IsNumber() || from == to {
				return
			}

			pair := ConversionPair{from, to}
			if _, ok := conversionPairs[CategorySafeNumber][pair]; !ok {
				conversionPairs[CategoryUnsafeNumber][pair] = struct{}{}
			}
		})
	})

	conversionPairs[CategoryTextNumber] = map[ConversionPair]struct{}{}
	conversionPairs[CategoryNumericBool] = map[ConversionPair]struct{}{}
	conversionPairs[CategoryTimestamp] = map[ConversionPair]struct{}{}

	forEachKind(func(k KindEnum) {
		if k.IsNumber() {
			conversionPairs[CategoryTextNumber][ConversionPair{k, KindString}] = struct{}{}
			conversionPairs[CategoryTextNumber][ConversionPair{KindString, k}] = struct{}{}
		}

		if k.IsInteger() {
			conversionPairs[CategoryNumericBool][ConversionPair{k, KindBool}] = struct{}{}
			conversionPairs[CategoryNumericBool][ConversionPair{KindBool, k}] = struct{}{}
			conversionPairs[CategoryTimestamp][ConversionPair{k, KindTime}] = struct{}{}
			conversionPairs[CategoryTimestamp][ConversionPair{KindTime, k}] = struct{}{}
		}
	})

	conversionPairs[CategoryTextualBool] = map[ConversionPair]struct{}{
		{KindString, KindBool}: {},
		{KindBool, KindString}: {},
	}

	conversionPairs[CategoryDatetime] = map[ConversionPair]struct{}{
		{KindString, KindTime}: {},
		{KindTime, KindString}: {},
	}

	conversionPairs[CategoryBinary] = map[ConversionPair]struct{}{
		{KindString, KindBytes}: {},
		{KindBytes, KindString}: {},
	}
}

func forEachKind(fn func(KindEnum)) {
	for k := KindEnum(1); int(k) < KindTotal; k++ {
		fn(k)
	}
}

// Allows reports whether a value of kind from may be coerced to kind to
// under this set of categories. Identity is always allowed.
func (c CategoryEnum) Allows(from, to KindEnum) bool {
	if from == to {
		return from.IsValid()
	}

	pair := ConversionPair{from, to}

	for cat, pairs := range conversionPairs {
		if c&cat == 0 {
			continue
		}

		if _, ok := pairs[pair]; ok {
			return true
		}
	}

	return false
}

// Has reports whether all categories of other are in c.
func (c CategoryEnum) Has(other CategoryEnum) bool {
	return c&other == other
}

func (c CategoryEnum) String() string {
	if c == CategoryNone {
		return "none"
	}

	var names []string

	for _, cn := range categoryNames {
		if c&cn.cat != 0 {
			names = append(names, cn.name)
		}
	}

	return strings.Join(names, "|")
}

// ParseCategory parses a single category name as written in mapping files.
func ParseCategory(name string) (CategoryEnum, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "all":
		return CategoryAll, nil
	case "none":
		return CategoryNone, nil
	}

	for _, cn := range categoryNames {
		if cn.name == name {
			return cn.cat, nil
		}
	}

	return CategoryNone, fmt.Errorf("unknown coercion category %q", name)
}

// ParseCategories combines a list of category names. An empty list means CategoryAll.
func ParseCategories(names []string) (CategoryEnum, error) {
	if len(names) == 0 {
		return CategoryAll, nil
	}

	result := CategoryNone

	for _, name := range names {
		cat, err := ParseCategory(name)
		if err != nil {
			return CategoryNone, err
		}

		result |= cat
	}

	return result, nil
}

// CategoryNames lists the names accepted by ParseCategory, excluding all/none.
func CategoryNames() []string {
	names := make([]string, len(categoryNames))
	for i, cn := range categoryNames {
		names[i] = cn.name
	}

	return names
}
