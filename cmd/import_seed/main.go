package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"club-portal/logging"
	"club-portal/media"
	"club-portal/portal"
	"club-portal/storage"

	"github.com/spf13/pflag"
)

func main() {
	dbPath := pflag.String("db", "portal.db", "SQLite database to recreate")
	seedFile := pflag.String("seed", "", "YAML seed file (default: built-in dataset)")
	photosDir := pflag.String("photos", "", "directory of images to import into the gallery")
	owner := pflag.String("owner", portal.AdminID, "user that imported photos belong to")
	pflag.Parse()

	// Clean up any existing database files
	fmt.Println("Cleaning up existing database files...")
	for _, file := range []string{*dbPath, *dbPath + "-shm", *dbPath + "-wal"} {
		if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
			fmt.Printf("Warning: Could not remove %s: %v\n", file, err)
		}
	}
	fmt.Println("Database cleanup complete.")

	seed := portal.DefaultSeed()
	if *seedFile != "" {
		var err error
		if seed, err = portal.LoadSeedFile(*seedFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading seed: %v\n", err)
			os.Exit(1)
		}
	}

	if *photosDir != "" {
		imported, failed := importPhotos(seed, *photosDir, *owner)
		fmt.Printf("\nPhotos imported: %d, errors: %d\n", imported, failed)
	}

	backend, err := storage.NewSQLite(*dbPath, logging.Discard())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating database: %v\n", err)
		os.Exit(1)
	}
	store := storage.NewStore(backend, nil)
	defer store.Close()

	portal.New(store, portal.WithSeed(seed)).Reset(seed)

	fmt.Printf("\nSeed written to %s\n", *dbPath)
	fmt.Printf("%-14s %s\n", "Slot", "Entries")
	fmt.Println(strings.Repeat("-", 24))
	for _, row := range []struct {
		slot string
		n    int
	}{
		{portal.SlotUsers, len(seed.Users)},
		{portal.SlotWork, len(seed.Work)},
		{portal.SlotEvents, len(seed.Events)},
		{portal.SlotAchievements, len(seed.Achievements)},
		{portal.SlotArticles, len(seed.Articles)},
		{portal.SlotPhotos, len(seed.Photos)},
	} {
		fmt.Printf("%-14s %d\n", row.slot, row.n)
	}
}

// importPhotos appends every readable image in dir to the seed's gallery.
func importPhotos(seed *portal.Seed, dir, owner string) (imported, failed int) {
	known := false
	for _, u := range seed.Users {
		known = known || u.ID == owner
	}
	if !known {
		fmt.Printf("Warning: owner %q is not a seeded user, skipping photos\n", owner)
		return 0, 0
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading photos directory: %v\n", err)
		return 0, 1
	}

	reader := media.NewReader(media.DefaultMaxBytes, 1920)
	nextID := 1
	for _, p := range seed.Photos {
		nextID = max(nextID, p.ID+1)
	}

	fmt.Printf("Importing photos from %s directory...\n", dir)
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		name := file.Name()
		fmt.Printf("Importing: %s... ", name)

		uri, err := reader.ReadDataURI(context.Background(), filepath.Join(dir, name))
		if err != nil {
			fmt.Printf("ERROR - %v\n", err)
			failed++
			continue
		}
		seed.Photos = append(seed.Photos, portal.Photo{
			ID:        nextID,
			UserID:    owner,
			Title:     strings.TrimSuffix(name, filepath.Ext(name)),
			URL:       uri,
			Timestamp: time.Now().UnixMilli(),
		})
		fmt.Printf("SUCCESS (ID: %d)\n", nextID)
		nextID++
		imported++
	}
	return imported, failed
}
