package db

import (
	"fmt"
	"time"
)

// CreateFixturesDatabase creates a database seeded with realistic sample tasks
func CreateFixturesDatabase(dbPath string) error {
	// Initialize empty database
	if err := Initialize(dbPath); err != nil {
		return fmt.Errorf("initializing fixtures database: %w", err)
	}

	database, err := Open(dbPath, Options{Logger: DiscardLogger()})
	if err != nil {
		return fmt.Errorf("opening fixtures database: %w", err)
	}
	defer database.Close()

	for _, task := range Fixtures(time.Now()) {
		if _, err := database.Insert(task); err != nil {
			return fmt.Errorf("adding fixture task %q: %w", task.Title, err)
		}
	}

	return nil
}

// Fixtures returns the sample tasks relative to now
func Fixtures(now time.Time) []Task {
	day := 24 * time.Hour
	fixture := func(title string, p Priority) Task {
		t := NewTask(title)
		t.Priority = p
		t.CreatedAt = now.Add(-7 * day)
		return t
	}

	renew := fixture("Renew passport", PriorityHigh)
	renew.Description = "Photos are in the desk drawer"
	renew.DueDate = TimePtr(now.Add(-2 * day))

	dentist := fixture("Call the dentist", PriorityMedium)
	dentist.Description = "Reschedule the cleaning"
	dentist.PhoneNumber = "555-0101"
	dentist.DueDate = TimePtr(now.Add(3 * day))

	groceries := fixture("Buy groceries", PriorityLow)
	groceries.Description = "Milk, eggs, coffee"

	taxes := fixture("File taxes", PriorityHigh)
	taxes.DueDate = TimePtr(now.Add(14 * day))

	plants := fixture("Water the plants", PriorityLow)
	plants.Done = true
	plants.CompletedAt = TimePtr(now.Add(-day))

	mom := fixture("Remind Mom about dinner", PriorityMedium)
	mom.PhoneNumber = "555-0103"
	mom.Description = "Sunday at 6"

	return []Task{renew, dentist, groceries, taxes, plants, mom}
}
