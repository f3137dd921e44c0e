package primitive_test

import (
	"fmt"
	"time"

	"search-mapper/primitive"
)

func Example() {
	for _, name := range []string{"chararray", "keyword", "long", "double", "date", "geo_point"} {
		kind, ok := primitive.ParseKind(name)
		fmt.Println(name, kind, ok)
	}

	fmt.Println(primitive.FromValue(int64(1)))
	fmt.Println(primitive.FromValue(time.Time{}))
	fmt.Println(primitive.FromValue(struct{}{}))
	// Output:
	// chararray KindString true
	// keyword KindString true
	// long KindInt64 true
	// double KindFloat64 true
	// date KindTime true
	// geo_point KindEnum(0) false
	// KindInt64
	// KindTime
	// KindEnum(0)
}

func ExampleKindEnum_TypeName() {
	fmt.Println(primitive.KindInt32.TypeName(), primitive.KindBytes.TypeName())
	// Output:
	// int bytearray
}
