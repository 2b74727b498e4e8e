package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"buddyup/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// sharedPassword is the login password for every seeded account.
const sharedPassword = "Seed!Passw0rd99"

// cityCenter anchors seeded users around real metro areas so distance
// filters return plausible results in development.
type cityCenter struct {
	Name string
	Lat  float64
	Lon  float64
}

var cityCenters = []cityCenter{
	{"Philadelphia", 39.9526, -75.1652},
	{"New York", 40.7128, -74.0060},
	{"Boston", 42.3601, -71.0589},
	{"Washington", 38.9072, -77.0369},
	{"Chicago", 41.8781, -87.6298},
	{"Austin", 30.2672, -97.7431},
	{"Denver", 39.7392, -104.9903},
	{"Seattle", 47.6062, -122.3321},
}

var skillLevels = []models.SkillLevel{
	models.SkillBeginner,
	models.SkillIntermediate,
	models.SkillAdvanced,
	models.SkillExpert,
}

var allDays = []models.Weekday{
	models.Monday, models.Tuesday, models.Wednesday, models.Thursday,
	models.Friday, models.Saturday, models.Sunday,
}

var allTimes = []models.TimeOfDay{
	models.Morning, models.Afternoon, models.Evening,
}

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and tests.
type Factory struct {
	db           *gorm.DB
	rng          *rand.Rand
	passwordHash string
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) (*Factory, error) {
	gofakeit.Seed(time.Now().UnixNano())

	// One bcrypt call for the whole run; hashing per user makes large
	// seeds unbearably slow.
	hash, err := bcrypt.GenerateFromPassword([]byte(sharedPassword), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash seed password: %w", err)
	}

	return &Factory{
		db:           db,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		passwordHash: string(hash),
	}, nil
}

// BuildUser constructs a user with a realistic profile but does not
// persist it. Roughly one in ten users has no location set, which keeps
// the missing-location path exercised in development.
func (f *Factory) BuildUser(n int) *models.User {
	first := gofakeit.FirstName()
	last := gofakeit.LastName()
	username := fmt.Sprintf("%s%s%d", strings.ToLower(first), strings.ToLower(last), n)

	user := &models.User{
		Username:    username,
		Email:       fmt.Sprintf("%s@example.com", username),
		Password:    f.passwordHash,
		DisplayName: first + " " + last,
		Bio:         gofakeit.Sentence(10),
		MaxTravelKm: []float64{5, 10, 25, 50}[f.rng.Intn(4)],
		Verified:    f.rng.Intn(5) == 0,
		Public:      f.rng.Intn(12) != 0,
	}

	if f.rng.Intn(10) != 0 {
		city := cityCenters[f.rng.Intn(len(cityCenters))]
		// jitter of ~0.2 degrees keeps users within ~20km of the center
		lat := city.Lat + (f.rng.Float64()-0.5)*0.4
		lon := city.Lon + (f.rng.Float64()-0.5)*0.4
		user.Latitude = &lat
		user.Longitude = &lon
	}

	user.PreferredDays = f.pickDays()
	user.PreferredTimes = f.pickTimes()
	return user
}

func (f *Factory) pickDays() []models.Weekday {
	count := 1 + f.rng.Intn(4)
	picked := make([]models.Weekday, 0, count)
	for _, i := range f.rng.Perm(len(allDays))[:count] {
		picked = append(picked, allDays[i])
	}
	return picked
}

func (f *Factory) pickTimes() []models.TimeOfDay {
	count := 1 + f.rng.Intn(2)
	picked := make([]models.TimeOfDay, 0, count)
	for _, i := range f.rng.Perm(len(allTimes))[:count] {
		picked = append(picked, allTimes[i])
	}
	return picked
}

// CreateUsersBatch persists users in batches of 100.
func (f *Factory) CreateUsersBatch(users []*models.User) error {
	if len(users) == 0 {
		return nil
	}
	return f.db.CreateInBatches(users, 100).Error
}

// BuildPreference constructs a sport preference for a user.
func (f *Factory) BuildPreference(userID, sportID uint) *models.SportPreference {
	years := f.rng.Intn(15)
	return &models.SportPreference{
		UserID:          userID,
		SportID:         sportID,
		SkillLevel:      skillLevels[f.rng.Intn(len(skillLevels))],
		YearsExperience: &years,
		Public:          true,
	}
}

// BuildMatchRequest constructs a match request between two users. The
// status distribution skews toward pending so the inbox has content.
func (f *Factory) BuildMatchRequest(requesterID, recipientID uint, sportID *uint) *models.MatchRequest {
	status := models.MatchRequestStatusPending
	switch f.rng.Intn(10) {
	case 0, 1, 2:
		status = models.MatchRequestStatusAccepted
	case 3:
		status = models.MatchRequestStatusRejected
	case 4:
		status = models.MatchRequestStatusCanceled
	}

	requestedAt := time.Now().UTC().Add(-time.Duration(f.rng.Intn(30*24)) * time.Hour)
	req := &models.MatchRequest{
		RequesterID: requesterID,
		RecipientID: recipientID,
		SportID:     sportID,
		Status:      status,
		Message:     gofakeit.Sentence(8),
		RequestedAt: requestedAt,
	}
	if status != models.MatchRequestStatusPending {
		respondedAt := requestedAt.Add(time.Duration(1+f.rng.Intn(48)) * time.Hour)
		req.RespondedAt = &respondedAt
	}
	return req
}
