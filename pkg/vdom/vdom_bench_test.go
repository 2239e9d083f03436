package vdom

import (
	"fmt"
	"testing"
)

func benchList(n int, offset int) *VNode {
	items := make([]*VNode, n)
	for i := 0; i < n; i++ {
		items[i] = Keyed(fmt.Sprintf("row-%d", (i+offset)%n),
			Li(Class("row"), Textf("item %d", (i+offset)%n)))
	}
	return Ul(items)
}

func BenchmarkDiffIdentical(b *testing.B) {
	old := benchList(100, 0)
	new := benchList(100, 0)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Diff(old, new)
	}
}

func BenchmarkDiffKeyedRotate(b *testing.B) {
	old := benchList(100, 0)
	new := benchList(100, 1)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Diff(old, new)
	}
}

func BenchmarkDiffDeep(b *testing.B) {
	build := func(label string) *VNode {
		n := Text(label)
		for i := 0; i < 50; i++ {
			n = Div(Class("lvl"), n)
		}
		return n
	}
	old := build("a")
	new := build("b")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Diff(old, new)
	}
}

func BenchmarkPropIndex(b *testing.B) {
	props := []Property{
		Class("a"), ID("b"), Href("c"), Attr("role", "button"),
		Style(Css("color", "red"), Css("margin", "0")),
		Prop("value", "x"),
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		propIndex(props)
	}
}
