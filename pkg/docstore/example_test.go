package docstore_test

import (
	"context"
	"fmt"

	"github.com/matzehuels/atlas/pkg/docstore"
)

func ExampleStore() {
	ctx := context.Background()
	store := docstore.NewMemoryStore()

	if err := store.Put(ctx, "floorplans", []byte(`{"maps": []}`)); err != nil {
		fmt.Println("put:", err)
		return
	}

	data, err := store.Get(ctx, "floorplans")
	if err != nil {
		fmt.Println("get:", err)
		return
	}
	fmt.Println(string(data))

	entries, _ := store.List(ctx)
	for _, e := range entries {
		fmt.Printf("%s (%d bytes)\n", e.Name, e.Size)
	}
	// Output:
	// {"maps": []}
	// floorplans (12 bytes)
}
