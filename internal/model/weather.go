package model

// WeatherReport is the normalized lookup result returned to clients and
// snapshotted into search history. Every field is always present: numeric
// fields are pointers and serialize as null when the provider omitted them,
// strings and slices carry explicit fallbacks.
type WeatherReport struct {
	Location WeatherLocation `json:"location"`
	Current  WeatherCurrent  `json:"current"`
}

type WeatherLocation struct {
	Name      string `json:"name"`
	Country   string `json:"country"`
	Region    string `json:"region"`
	Localtime string `json:"localtime"`
	Lat       string `json:"lat"`
	Lon       string `json:"lon"`
}

type WeatherCurrent struct {
	Temperature         *float64 `json:"temperature"`
	Feelslike           *float64 `json:"feelslike"`
	Humidity            *float64 `json:"humidity"`
	WindSpeed           *float64 `json:"wind_speed"`
	WindDir             string   `json:"wind_dir"`
	Pressure            *float64 `json:"pressure"`
	Visibility          *float64 `json:"visibility"`
	UVIndex             *float64 `json:"uv_index"`
	Cloudcover          *float64 `json:"cloudcover"`
	WeatherDescriptions []string `json:"weather_descriptions"`
	WeatherIcons        []string `json:"weather_icons"`
	IsDay               string   `json:"is_day"`
	ObservationTime     string   `json:"observation_time"`
}
