package feed

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func TestParseRSS(t *testing.T) {
	xml := `<?xml version="1.0"?>
<rss><channel><title>Acme Blog</title>
<ITEM>
  <title><![CDATA[Acme raises Series B]]></title>
  <link>https://acme.test/blog/series-b</link>
  <guid isPermaLink="false">post-42</guid>
</ITEM>
<item>
  <title>5 tips for X</title>
  <link>https://acme.test/blog/tips</link>
</item>
<item>
  <title>Untitled link-less post</title>
</item>
</channel></rss>`

	got := ParseRSS(xml)
	want := []Item{
		{ID: "post-42", Title: "Acme raises Series B", Link: "https://acme.test/blog/series-b"},
		{ID: "https://acme.test/blog/tips", Title: "5 tips for X", Link: "https://acme.test/blog/tips"},
		{ID: "Untitled link-less post", Title: "Untitled link-less post"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseRSS() =\n%+v\nwant\n%+v", got, want)
	}
}

func TestParseRSSBoundsItems(t *testing.T) {
	var b strings.Builder
	b.WriteString("<rss><channel>")
	for i := 0; i < 25; i++ {
		fmt.Fprintf(&b, "<item><title>Post %d</title><guid>%d</guid></item>", i, i)
	}
	b.WriteString("</channel></rss>")

	items := ParseRSS(b.String())
	if len(items) != MaxItems {
		t.Fatalf("Expected %d items, got %d", MaxItems, len(items))
	}
	if items[0].ID != "0" || items[9].ID != "9" {
		t.Errorf("Expected first ten items in order, got %v", IDs(items))
	}
}

func TestParseRSSAtomFallback(t *testing.T) {
	xml := `<feed xmlns="http://www.w3.org/2005/Atom">
<entry><title>Introducing Widgets</title><link rel="alternate" href="https://acme.test/widgets"/><id>tag:acme.test,2026:1</id></entry>
</feed>`
	got := ParseRSS(xml)
	want := []Item{{ID: "tag:acme.test,2026:1", Title: "Introducing Widgets", Link: "https://acme.test/widgets"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseRSS() = %+v, want %+v", got, want)
	}
}

func TestParseRSSMalformed(t *testing.T) {
	for _, in := range []string{"", "not xml at all", "<rss><item><title>unterminated"} {
		if got := ParseRSS(in); len(got) != 0 {
			t.Errorf("ParseRSS(%q) = %+v, want empty", in, got)
		}
	}
}
