package backfill

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Conversly/tripshare/internal/api/auth"
	"github.com/Conversly/tripshare/internal/api/itinerary"
	"github.com/Conversly/tripshare/internal/api/trips"
	"github.com/Conversly/tripshare/internal/loaders"
	"github.com/Conversly/tripshare/internal/types"
	"github.com/Conversly/tripshare/internal/utils"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// SeedFile is the YAML fixture format read by Seed.
type SeedFile struct {
	Users []SeedUser `yaml:"users"`
}

type SeedUser struct {
	Username    string     `yaml:"username"`
	Email       string     `yaml:"email"`
	Password    string     `yaml:"password"`
	DisplayName string     `yaml:"displayName"`
	Trips       []SeedTrip `yaml:"trips"`
}

type SeedTrip struct {
	Title       string           `yaml:"title"`
	Description string           `yaml:"description"`
	Destination string           `yaml:"destination"`
	StartDate   *types.Date      `yaml:"startDate"`
	EndDate     *types.Date      `yaml:"endDate"`
	Visibility  types.Visibility `yaml:"visibility"`
	Tags        []string         `yaml:"tags"`
	Itinerary   []SeedDay        `yaml:"itinerary"`
}

type SeedDay struct {
	DayNumber int         `yaml:"dayNumber"`
	Date      *types.Date `yaml:"date"`
	Title     string      `yaml:"title"`
	Notes     string      `yaml:"notes"`
	Items     []SeedItem  `yaml:"items"`
}

type SeedItem struct {
	Position  int    `yaml:"position"`
	Title     string `yaml:"title"`
	Location  string `yaml:"location"`
	StartTime string `yaml:"startTime"`
	Notes     string `yaml:"notes"`
}

type SeedOptions struct {
	// Cost is the bcrypt cost for fixture passwords; zero means the default.
	Cost int
}

type SeedReport struct {
	Users   int
	Trips   int
	Skipped []string
}

// ParseSeed decodes a fixture file. Unknown keys are rejected so typos do
// not silently drop data.
func ParseSeed(r io.Reader) (*SeedFile, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f SeedFile
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("invalid seed file: %w", err)
	}
	return &f, nil
}

// Seed inserts every fixture user with their trips and itineraries. The
// whole file is validated before anything is written. Users that already
// exist are skipped, so a seed file can be applied more than once.
func (r *Runner) Seed(ctx context.Context, f *SeedFile, opts SeedOptions) (*SeedReport, error) {
	if err := utils.RegisterValidators(); err != nil {
		return nil, err
	}
	cost := opts.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	type prepared struct {
		user        *types.User
		trips       []types.Trip
		itineraries [][]types.ItineraryDay
	}
	batch := make([]prepared, 0, len(f.Users))

	for i, su := range f.Users {
		p, err := prepareUser(su, cost)
		if err != nil {
			return nil, fmt.Errorf("user %d (%s): %w", i+1, su.Username, err)
		}
		var next prepared
		next.user = p
		for j, st := range su.Trips {
			trip, days, err := prepareTrip(st)
			if err != nil {
				return nil, fmt.Errorf("user %d (%s) trip %d: %w", i+1, su.Username, j+1, err)
			}
			next.trips = append(next.trips, *trip)
			next.itineraries = append(next.itineraries, days)
		}
		batch = append(batch, next)
	}

	report := &SeedReport{}
	for _, p := range batch {
		err := r.store.SeedUser(ctx, p.user, p.trips, p.itineraries)
		if errors.Is(err, loaders.ErrConflict) {
			utils.Zlog.Info("Seed user already exists, skipping", zap.String("username", p.user.Username))
			report.Skipped = append(report.Skipped, p.user.Username)
			continue
		}
		if err != nil {
			return report, fmt.Errorf("failed to seed %s: %w", p.user.Username, err)
		}
		report.Users++
		report.Trips += len(p.trips)
		utils.Zlog.Info("Seeded user",
			zap.String("username", p.user.Username),
			zap.String("userId", p.user.ID.String()),
			zap.Int("trips", len(p.trips)))
	}
	return report, nil
}

func prepareUser(su SeedUser, cost int) (*types.User, error) {
	req := auth.RegisterRequest{
		Username:    su.Username,
		Email:       su.Email,
		Password:    su.Password,
		DisplayName: su.DisplayName,
	}
	req.Normalize()
	if err := binding.Validator.ValidateStruct(&req); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), cost)
	if err != nil {
		return nil, err
	}
	return &types.User{
		Username:     req.Username,
		Email:        req.Email,
		DisplayName:  req.DisplayName,
		PasswordHash: string(hash),
	}, nil
}

func prepareTrip(st SeedTrip) (*types.Trip, []types.ItineraryDay, error) {
	req := trips.CreateTripRequest{
		Title:       st.Title,
		Description: st.Description,
		Destination: st.Destination,
		StartDate:   st.StartDate,
		EndDate:     st.EndDate,
		Visibility:  st.Visibility,
		Tags:        st.Tags,
	}
	if err := binding.Validator.ValidateStruct(&req); err != nil {
		return nil, nil, err
	}
	// The owner is assigned when the user row exists.
	trip, err := req.Trip(uuid.Nil)
	if err != nil {
		return nil, nil, err
	}

	plan := itinerary.ReplaceRequest{Days: make([]itinerary.DayRequest, 0, len(st.Itinerary))}
	for _, d := range st.Itinerary {
		day := itinerary.DayRequest{
			DayNumber: d.DayNumber,
			Date:      d.Date,
			Title:     d.Title,
			Notes:     d.Notes,
		}
		for _, it := range d.Items {
			day.Items = append(day.Items, itinerary.ItemRequest{
				Position:  it.Position,
				Title:     it.Title,
				Location:  it.Location,
				StartTime: it.StartTime,
				Notes:     it.Notes,
			})
		}
		plan.Days = append(plan.Days, day)
	}
	days, err := plan.Normalize(trip)
	if err != nil {
		return nil, nil, err
	}
	return trip, days, nil
}
