package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/chandrakanthc072-pixel/weather-monitoring-system/internal/events"
	"github.com/chandrakanthc072-pixel/weather-monitoring-system/internal/model"
	"github.com/chandrakanthc072-pixel/weather-monitoring-system/internal/repository"
	"github.com/chandrakanthc072-pixel/weather-monitoring-system/internal/weatherstack"
)

var ErrCityRequired = errors.New("city name is required")

// WeatherProvider is the outbound dependency; the weatherstack client
// satisfies it in production, tests plug in stubs.
type WeatherProvider interface {
	Current(ctx context.Context, city string) (*weatherstack.Response, error)
}

type WeatherService interface {
	// Lookup fetches current conditions, normalizes them and appends a
	// history record owned by userID.
	Lookup(ctx context.Context, userID uuid.UUID, city string) (*model.WeatherReport, error)
}

type weatherService struct {
	provider    WeatherProvider
	historyRepo repository.HistoryRepository
	publisher   events.Publisher
}

func NewWeatherService(provider WeatherProvider, historyRepo repository.HistoryRepository, publisher events.Publisher) WeatherService {
	return &weatherService{
		provider:    provider,
		historyRepo: historyRepo,
		publisher:   publisher,
	}
}

func (s *weatherService) Lookup(ctx context.Context, userID uuid.UUID, city string) (*model.WeatherReport, error) {
	if city == "" {
		return nil, ErrCityRequired
	}

	raw, err := s.provider.Current(ctx, city)
	if err != nil {
		return nil, err
	}

	report := normalize(city, raw)

	record := &model.SearchHistory{
		UserID:      userID,
		City:        report.Location.Name,
		Temperature: report.Current.Temperature,
		Condition:   report.Current.WeatherDescriptions[0],
		Humidity:    report.Current.Humidity,
		WindSpeed:   report.Current.WindSpeed,
	}
	if _, err := s.historyRepo.Insert(ctx, record); err != nil {
		return nil, err
	}

	go s.publisher.PublishWeatherSearched(userID, record.City, record.SearchedAt)

	return report, nil
}

// normalize maps a possibly partial provider payload into the fixed report
// shape. Missing numbers stay nil (rendered as JSON null), missing strings
// get the documented fallbacks; no field is ever absent.
func normalize(city string, raw *weatherstack.Response) *model.WeatherReport {
	report := &model.WeatherReport{
		Location: model.WeatherLocation{
			Name:      city,
			Localtime: time.Now().Format("1/2/2006, 3:04:05 PM"),
		},
		Current: model.WeatherCurrent{
			WeatherDescriptions: []string{"N/A"},
			WeatherIcons:        []string{},
			IsDay:               "yes",
		},
	}

	if loc := raw.Location; loc != nil {
		if loc.Name != "" {
			report.Location.Name = loc.Name
		}
		report.Location.Country = loc.Country
		report.Location.Region = loc.Region
		if loc.Localtime != "" {
			report.Location.Localtime = loc.Localtime
		}
		report.Location.Lat = loc.Lat
		report.Location.Lon = loc.Lon
	}

	if cur := raw.Current; cur != nil {
		report.Current.Temperature = cur.Temperature
		report.Current.Feelslike = cur.Feelslike
		report.Current.Humidity = cur.Humidity
		report.Current.WindSpeed = cur.WindSpeed
		report.Current.WindDir = cur.WindDir
		report.Current.Pressure = cur.Pressure
		report.Current.Visibility = cur.Visibility
		report.Current.UVIndex = cur.UVIndex
		report.Current.Cloudcover = cur.Cloudcover
		if len(cur.WeatherDescriptions) > 0 {
			report.Current.WeatherDescriptions = cur.WeatherDescriptions
		}
		if len(cur.WeatherIcons) > 0 {
			report.Current.WeatherIcons = cur.WeatherIcons
		}
		if cur.IsDay != "" {
			report.Current.IsDay = cur.IsDay
		}
		report.Current.ObservationTime = cur.ObservationTime
	}

	return report
}
