package events

import (
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

type Publisher interface {
	PublishUserRegistered(userID uuid.UUID, email string) error
	PublishWeatherSearched(userID uuid.UUID, city string, searchedAt time.Time) error
}

type NatsPublisher struct {
	conn *nats.Conn
}

func NewNatsPublisher(natsURL string) (Publisher, error) {
	nc, err := nats.Connect(natsURL)
	if err != nil {
		return nil, err
	}

	return &NatsPublisher{conn: nc}, nil
}

type UserRegisteredEvent struct {
	EventType    string    `json:"event_type"`
	UserID       uuid.UUID `json:"user_id"`
	Email        string    `json:"email"`
	RegisteredAt time.Time `json:"registered_at"`
}

type WeatherSearchedEvent struct {
	EventType  string    `json:"event_type"`
	UserID     uuid.UUID `json:"user_id"`
	City       string    `json:"city"`
	SearchedAt time.Time `json:"searched_at"`
}

func (p *NatsPublisher) PublishUserRegistered(userID uuid.UUID, email string) error {
	event := UserRegisteredEvent{
		EventType:    "user.registered",
		UserID:       userID,
		Email:        email,
		RegisteredAt: time.Now(),
	}

	return p.publish(event.EventType, event)
}

func (p *NatsPublisher) PublishWeatherSearched(userID uuid.UUID, city string, searchedAt time.Time) error {
	event := WeatherSearchedEvent{
		EventType:  "weather.searched",
		UserID:     userID,
		City:       city,
		SearchedAt: searchedAt,
	}

	return p.publish(event.EventType, event)
}

func (p *NatsPublisher) publish(subject string, event any) error {
	eventJSON, err := json.Marshal(event)
	if err != nil {
		log.Printf("Error marshalling event JSON: %v", err)
		return err
	}

	if err := p.conn.Publish(subject, eventJSON); err != nil {
		log.Printf("Error publishing to NATS: %v", err)
		return err
	}

	return nil
}
