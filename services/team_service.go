package services

import (
	"context"
	"strings"

	"football-analysis/models"
	"football-analysis/store"
	"football-analysis/utils"
)

type TeamService struct {
	Store store.TeamStore
}

func NewTeamService(st store.TeamStore) *TeamService {
	return &TeamService{Store: st}
}

type TeamInput struct {
	Name           string `json:"name"`
	ShortName      string `json:"short_name"`
	LogoURL        string `json:"logo_url"`
	PrimaryColor   string `json:"primary_color"`
	SecondaryColor string `json:"secondary_color"`
}

// List returns teams, optionally filtered by an accent-insensitive name fragment.
func (s *TeamService) List(ctx context.Context, q string) ([]models.Team, error) {
	return s.Store.ListTeams(ctx, utils.FoldKey(q))
}

func (s *TeamService) Get(ctx context.Context, slug string) (*models.Team, error) {
	t, err := s.Store.GetTeamBySlug(ctx, slug)
	if err != nil {
		return nil, lookupErr("team", err)
	}
	return t, nil
}

func (s *TeamService) Create(ctx context.Context, in TeamInput) (*models.Team, error) {
	name := utils.NormalizeName(in.Name)
	if name == "" {
		return nil, invalid("name", "is required")
	}
	if err := maxLen("name", name, 100); err != nil {
		return nil, err
	}
	short := strings.ToUpper(strings.TrimSpace(in.ShortName))
	if err := maxLen("short_name", short, 10); err != nil {
		return nil, err
	}

	t := &models.Team{
		Name:           name,
		Slug:           utils.Slugify(name),
		ShortName:      short,
		LogoURL:        strings.TrimSpace(in.LogoURL),
		PrimaryColor:   defaultString(in.PrimaryColor, "#000000"),
		SecondaryColor: defaultString(in.SecondaryColor, "#FFFFFF"),
		SearchName:     utils.FoldKey(name),
	}
	for field, color := range map[string]string{"primary_color": t.PrimaryColor, "secondary_color": t.SecondaryColor} {
		if !hexColor.MatchString(color) {
			return nil, invalid(field, "must be a hex color like #FFFFFF")
		}
	}
	if err := s.Store.CreateTeam(ctx, t); err != nil {
		return nil, conflictErr("team", err)
	}
	return t, nil
}

func defaultString(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}
