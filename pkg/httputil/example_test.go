package httputil_test

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/matzehuels/atlas/pkg/httputil"
)

func ExampleCache() {
	// Cache fetched documents for a day.
	dir := filepath.Join(os.TempDir(), "atlas-example")
	cache, err := httputil.NewCache(dir, 24*time.Hour)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	defer os.RemoveAll(dir)

	url := "https://example.com/floors.json"
	if err := cache.Set(url, `{"lobby":{"imageUrl":"l.png","hotspots":[]}}`); err != nil {
		fmt.Println("Error:", err)
		return
	}

	var body string
	if ok, err := cache.Get(url, &body); ok && err == nil {
		fmt.Println("cached bytes:", len(body))
	}
	// Output:
	// cached bytes: 44
}

func ExampleCache_miss() {
	dir := filepath.Join(os.TempDir(), "atlas-example-miss")
	cache, _ := httputil.NewCache(dir, time.Hour)
	defer os.RemoveAll(dir)

	var body string
	ok, err := cache.Get("https://example.com/never-fetched.json", &body)
	fmt.Println("found:", ok)
	fmt.Println("error:", err)
	// Output:
	// found: false
	// error: <nil>
}
