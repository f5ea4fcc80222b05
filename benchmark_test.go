package duallang_test

import (
	"context"
	"strings"
	"testing"

	"github.com/ali-185/DualLang"
	"github.com/ali-185/DualLang/cache"
	"github.com/ali-185/DualLang/processor"
	"github.com/ali-185/DualLang/provider"
)

// Benchmarks for performance validation

const mediumPage = `<!DOCTYPE html>
<html>
<head><title>Chapter One</title></head>
<body>
	<h1>Chapter One</h1>
	<p>The dog, which was <b>very</b> scary, bit me. So I ran.</p>
	<p>It was a cold morning, and the street was <i>empty</i>; nobody saw it happen.</p>
	<p>Later, at home, I told my mother: "The dog bit me!"</p>
	<pre><p>Not converted.</p></pre>
</body>
</html>`

func BenchmarkHashText(b *testing.B) {
	text := "Hello World, this is a sample text for hashing"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		duallang.HashText(text)
	}
}

func BenchmarkCacheKey(b *testing.B) {
	hash := "a591a6d40bf420404a011733cfb7b190d62c65bf0bcda32b57b277d9ad9f146e"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		duallang.CacheKey(hash, "en", "es_ES")
	}
}

func BenchmarkInMemoryCache_Get(b *testing.B) {
	c := cache.NewInMemoryCache(3600)
	c.Set("test-key", "test-value")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get("test-key")
	}
}

func BenchmarkInMemoryCache_Set(b *testing.B) {
	c := cache.NewBoundedInMemoryCache(3600, 1000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Set("test-key", "test-value")
	}
}

func BenchmarkSegmenter_Paragraph(b *testing.B) {
	s := duallang.NewSegmenter(nil, duallang.DefaultSentinels, duallang.DefaultSeparator)
	fragment := `<p>The dog, which was <b>very</b> scary, bit me. So I ran.</p>`
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.Segment(fragment); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSegmenter_LongFragment(b *testing.B) {
	s := duallang.NewSegmenter(nil, duallang.DefaultSentinels, duallang.DefaultSeparator)
	fragment := "<div>" + strings.Repeat(`Some <em>emphasised</em> text, and more; then <a href="#x">a link</a>. `, 200) + "</div>"
	b.SetBytes(int64(len(fragment)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.Segment(fragment); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkHTMLProcessor_Extract_Small(b *testing.B) {
	proc := processor.NewHTMLProcessor()
	html := `<body><div><p>Hello World</p></div></body>`
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		proc.Extract(html)
	}
}

func BenchmarkHTMLProcessor_Extract_Medium(b *testing.B) {
	proc := processor.NewHTMLProcessor()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		proc.Extract(mediumPage)
	}
}

func BenchmarkConverter_Process_Cached(b *testing.B) {
	c := duallang.NewConverter("en", "es", provider.UppercaseProvider{},
		duallang.WithCache(cache.NewInMemoryCache(3600)),
		duallang.WithProcessor(processor.NewHTMLProcessor()),
	)

	// Prime the cache
	c.ProcessHTML(context.Background(), mediumPage)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.ProcessHTML(context.Background(), mediumPage)
	}
}

func BenchmarkConverter_Process_Uncached(b *testing.B) {
	c := duallang.NewConverter("en", "es", provider.UppercaseProvider{},
		duallang.WithProcessor(processor.NewHTMLProcessor()),
	)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.ProcessHTML(context.Background(), mediumPage)
	}
}

func BenchmarkGetDirection(b *testing.B) {
	langs := []string{"en_US", "es_ES", "ar_SA", "ja_JP", "he_IL"}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		duallang.GetDirection(langs[i%len(langs)])
	}
}

func BenchmarkGetLanguageName(b *testing.B) {
	langs := []string{"en_US", "es_ES", "ar_SA", "ja_JP", "zh_CN"}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		duallang.GetLanguageName(langs[i%len(langs)])
	}
}
