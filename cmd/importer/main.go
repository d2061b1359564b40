package main

import (
	"library_stats/pkg/database"
	"library_stats/pkg/loader"
	"log"
	"os"
)

func main() {
	file := getEnv("DATA_FILE", "library_data.csv")
	name := getEnv("DATASET_NAME", "library")

	log.Printf("Importing %s as dataset %q", file, name)

	t, err := loader.LoadFile(file)
	if err != nil {
		log.Fatalf("Failed to load %s: %v", file, err)
	}

	db := database.InitLoansDB()
	dataset, err := database.SaveDataset(db, name, t)
	if err != nil {
		log.Fatalf("Failed to save dataset %q: %v", name, err)
	}

	log.Printf("Imported %d loans into dataset %s (%s); serve it with DATA_SOURCE=%s%s",
		t.Len(), dataset.Name, dataset.DatasetUid, loader.DatabasePrefix, dataset.Name)
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
