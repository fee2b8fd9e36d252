package main

import (
	"context"
	"embed"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/rs/zerolog"

	"github.com/pthm/editable"
	"github.com/pthm/editable/lib/store"
)

//go:embed pages
var pageFiles embed.FS

var countries = map[string][]editable.Record{
	"countries": {
		{ID: "de", Name: "Germany"},
		{ID: "fr", Name: "France"},
		{ID: "no", Name: "Norway"},
	},
}

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	// Records live in memory; use a file path to keep them
	db, err := store.OpenSQLite(":memory:")
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	ed := editable.New(
		editable.WithLogger(logger),
		editable.WithDataLoader(editable.NewStaticData(countries)),
	)
	if err := store.RegisterSQLite(ed, db); err != nil {
		log.Fatal(err)
	}
	if err := ed.HandleTarget("audit", func(ctx context.Context, t *editable.BaseTarget, payload editable.Data) (editable.Data, error) {
		logger.Info().Str("source", t.Descriptor.Raw).Interface("payload", payload).Msg("audit")
		return nil, nil
	}); err != nil {
		log.Fatal(err)
	}

	// In production, use a real secret
	key := []byte("example-key-must-be-32-bytes!!")
	srv, err := editable.NewServer(ed, key)
	if err != nil {
		log.Fatal(err)
	}
	for _, name := range []string{"customers", "people"} {
		f, err := pageFiles.Open("pages/" + name + ".html")
		if err != nil {
			log.Fatal(err)
		}
		_, err = srv.AddPage(name, f)
		f.Close()
		if err != nil {
			log.Fatal(err)
		}
	}

	mux := http.NewServeMux()
	mux.Handle("/", srv.Handler())
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/customers", http.StatusFound)
	})

	addr := ":8080"
	fmt.Printf("Starting server at http://localhost%s\n", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal(err)
	}
}
