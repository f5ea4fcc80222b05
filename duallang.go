// Package duallang builds dual-language HTML documents.
//
// Every delimiter-bounded run of text in a fragment is followed by a
// translated copy of itself, while the markup around it is kept identical in
// both copies. Reading the result alternates between short phrases in the
// source language and their translation:
//
//	<p>The dog, EL PERRO, which was <b>very</b> scary, QUE ERA <b>MUY</b> ATERRADOR, bit me. ME MORDIÓ.</p>
//
// Translation itself is delegated to a Gateway, a batch transform backend.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/ali-185/DualLang"
//	    "github.com/ali-185/DualLang/cache"
//	    "github.com/ali-185/DualLang/processor"
//	    "github.com/ali-185/DualLang/provider"
//	)
//
//	func main() {
//	    p := provider.NewOpenAIProvider(provider.OpenAIConfig{
//	        APIKey: os.Getenv("OPENAI_API_KEY"),
//	    })
//
//	    c := duallang.NewConverter("en", "es", p,
//	        duallang.WithCache(cache.NewInMemoryCache(3600)),
//	        duallang.WithProcessor(processor.NewHTMLProcessor()),
//	    )
//
//	    result, err := c.ProcessHTML(context.Background(), page)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(result.Content)
//	}
package duallang
