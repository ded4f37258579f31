package db

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	seedSources  = []string{"website", "facebook_ads", "google_ads", "referral", "events", "other"}
	seedStatuses = []string{"new", "contacted", "qualified", "lost", "won"}

	seedCities = map[string]string{
		"delhi":     "DELHI",
		"mumbai":    "MAHARASHTRA",
		"bangalore": "KARNATAKA",
		"chennai":   "TAMIL NADU",
		"kolkata":   "WEST BENGAL",
		"ahmedabad": "GUJARAT",
		"pune":      "MAHARASHTRA",
		"jaipur":    "RAJASTHAN",
		"hyderabad": "TELANGANA",
		"indore":    "MADHYA PRADESH",
	}

	seedFirstNames = []string{"aarav", "vivaan", "aditya", "ananya", "diya", "ishaan", "kavya", "rohan", "sneha", "arjun"}
	seedLastNames  = []string{"sharma", "verma", "patel", "singh", "gupta", "mehta", "iyer", "reddy", "nair", "joshi"}
)

// EnsureSeedLeads populates sample leads for development when the table is
// empty. It is a no-op on a non-empty table.
func EnsureSeedLeads(ctx context.Context, pool *pgxpool.Pool, timeout time.Duration, count int) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var existing int64
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM leads").Scan(&existing); err != nil {
		return fmt.Errorf("count leads: %w", err)
	}
	if existing > 0 {
		return nil
	}

	cities := make([]string, 0, len(seedCities))
	for city := range seedCities {
		cities = append(cities, city)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	for i := 0; i < count; i++ {
		first := seedFirstNames[rng.Intn(len(seedFirstNames))]
		last := seedLastNames[rng.Intn(len(seedLastNames))]
		city := cities[rng.Intn(len(cities))]
		status := seedStatuses[rng.Intn(len(seedStatuses))]

		var lastActivity *time.Time
		if status != "new" {
			at := time.Now().AddDate(0, 0, -rng.Intn(90))
			lastActivity = &at
		}

		if _, err := pool.Exec(ctx, `
			INSERT INTO leads (
				first_name, last_name, email, phone, company, city, state,
				source, status, score, lead_value, last_activity_at, is_qualified
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
			ON CONFLICT (email) DO NOTHING
		`,
			first,
			last,
			fmt.Sprintf("%s.%s%d@example.com", first, last, i),
			fmt.Sprintf("+91%010d", rng.Int63n(10_000_000_000)),
			fmt.Sprintf("%s industries", last),
			city,
			seedCities[city],
			seedSources[rng.Intn(len(seedSources))],
			status,
			rng.Intn(101),
			float64(rng.Intn(100_000)),
			lastActivity,
			rng.Intn(2) == 0,
		); err != nil {
			return fmt.Errorf("seed lead: %w", err)
		}
	}
	return nil
}
