package claims

import (
	"fmt"
	"math/rand/v2"
	"time"
)

const (
	// DefaultRecordCount is the size of the synthetic data set.
	DefaultRecordCount = 250
	// MaxRecordCount is bounded by the five digit claim id space.
	MaxRecordCount = 90000
)

var firstNames = []string{
	"James", "Mary", "John", "Patricia", "Robert", "Jennifer", "Michael", "Linda",
	"William", "Elizabeth", "David", "Barbara", "Richard", "Susan", "Joseph", "Jessica",
	"Thomas", "Sarah", "Charles", "Karen", "Christopher", "Nancy", "Daniel", "Lisa",
	"Matthew", "Betty", "Anthony", "Margaret", "Mark", "Sandra",
}

var lastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis",
	"Rodriguez", "Martinez", "Hernandez", "Lopez", "Gonzalez", "Wilson", "Anderson", "Thomas",
	"Taylor", "Moore", "Jackson", "Martin", "Lee", "Perez", "Thompson", "White",
	"Harris", "Sanchez", "Clark", "Ramirez", "Lewis", "Robinson",
}

var insuranceCarriers = []string{
	"BCBS OF COLORADO", "AETNA", "UNITED HEALTHCARE", "CIGNA", "HUMANA",
	"KAISER PERMANENTE", "ANTHEM", "MEDICARE", "MEDICAID", "TRICARE",
}

var (
	serviceWindowStart = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	serviceWindowEnd   = time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC)
	lastUpdatedCeiling = time.Date(2030, time.June, 28, 0, 0, 0, 0, time.UTC)
)

type generator struct {
	rng  *rand.Rand
	seen map[string]bool
}

// Generate builds count synthetic claims. The same seed always yields the
// same records.
func Generate(count int, seed uint64) []Claim {
	switch {
	case count < 0:
		count = 0
	case count > MaxRecordCount:
		count = MaxRecordCount
	}
	g := &generator{
		rng:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		seen: make(map[string]bool, count),
	}

	out := make([]Claim, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, g.claim())
	}
	return out
}

func (g *generator) claim() Claim {
	serviceAt := g.between(serviceWindowStart, serviceWindowEnd)
	lastUpdated := g.between(serviceAt, lastUpdatedCeiling)
	sent := g.between(serviceAt, serviceWindowEnd)

	insuranceType := InsuranceSecondary
	if g.rng.Float64() > 0.3 {
		insuranceType = InsurancePrimary
	}
	syncStatus := PMSNotSynced
	if g.rng.Float64() > 0.7 {
		syncStatus = PMSSynced
	}

	return Claim{
		ID:                    g.claimID(),
		PatientFirstName:      pick(g.rng, firstNames),
		PatientLastName:       pick(g.rng, lastNames),
		PatientID:             g.fiveDigits(),
		ServiceDate:           truncateDay(serviceAt),
		InsuranceCarrier:      pick(g.rng, insuranceCarriers),
		InsuranceType:         insuranceType,
		Amount:                float64(g.rng.IntN(100000))/100 + 100,
		Status:                pick(g.rng, Statuses),
		LastUpdated:           lastUpdated.Truncate(time.Minute),
		User:                  pick(g.rng, firstNames)[:1] + pick(g.rng, lastNames)[:1],
		DateSent:              truncateDay(sent),
		DateSentOrig:          truncateDay(sent),
		PMSSyncStatus:         syncStatus,
		PMSSyncStatusModified: "Status modified today",
		ProviderFirstName:     "Dr. " + pick(g.rng, firstNames),
		ProviderLastName:      pick(g.rng, lastNames),
		ProviderID:            fmt.Sprintf("ID:%d", 1000000000+g.rng.Int64N(9000000000)),
	}
}

// claimID returns a five digit id not handed out before in this run.
func (g *generator) claimID() string {
	for {
		id := g.fiveDigits()
		if !g.seen[id] {
			g.seen[id] = true
			return id
		}
	}
}

func (g *generator) fiveDigits() string {
	return fmt.Sprintf("%d", 10000+g.rng.IntN(90000))
}

func (g *generator) between(start, end time.Time) time.Time {
	span := end.Sub(start)
	if span <= 0 {
		return start
	}
	return start.Add(time.Duration(g.rng.Int64N(int64(span))))
}

func pick[T any](rng *rand.Rand, items []T) T {
	return items[rng.IntN(len(items))]
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
