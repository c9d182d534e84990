// api/config/config.go
package config

import (
	"log"

	"github.com/spf13/viper"

	"github.com/dev-mohitbeniwal/sift/api/model"
)

// Configuration stores all the configurations
type Configuration struct {
	Server        ServerConfiguration
	Neo4j         DatabaseConfiguration
	Redis         RedisConfiguration
	Elasticsearch ElasticsearchConfiguration
	Geo           GeoProviderConfiguration
	Policies      PoliciesConfiguration
}

// ServerConfiguration stores the port and other web server settings
type ServerConfiguration struct {
	Port string
}

// DatabaseConfiguration stores data for database connection
type DatabaseConfiguration struct {
	URI      string
	Username string
	Password string
}

// RedisConfiguration stores data for Redis connection
type RedisConfiguration struct {
	Addr            string
	DefaultCacheTTL string
}

// ElasticsearchConfiguration stores data for Elasticsearch connection
type ElasticsearchConfiguration struct {
	URL           string
	SearchIndex   string
	AuditIndex    string
	MaxSearchHits int
}

// GeoProviderConfiguration points at the external geolocation service
type GeoProviderConfiguration struct {
	URL     string
	Timeout string
}

// PoliciesConfiguration bundles the three access policies. They are read once
// here and never re-read during a request, so every stage of one evaluation
// observes the same snapshot.
type PoliciesConfiguration struct {
	Time        model.TimeRestrictionPolicy
	Geo         model.GeoRestrictionPolicy
	Permissions model.DynamicPermissionPolicy
}

var config *Configuration

func InitConfig() error {
	viper.AddConfigPath("config") // path to look for the config file in
	viper.SetConfigName("config") // name of the config file (without extension)
	viper.SetConfigType("yaml")   // REQUIRED if the config file does not have the extension in the name

	viper.AutomaticEnv() // read in environment variables that match

	// Set default configurations
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("neo4j.uri", "bolt://localhost:7687")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("elasticsearch.url", "http://localhost:9200")
	viper.SetDefault("elasticsearch.searchIndex", "documents")
	viper.SetDefault("elasticsearch.auditIndex", "audit-logs")
	viper.SetDefault("elasticsearch.maxSearchHits", 50)
	viper.SetDefault("geo.url", "http://localhost:8081/geolocate")
	viper.SetDefault("geo.timeout", "5s")
	viper.SetDefault("redis.defaultCacheTTL", "10m")
	viper.SetDefault("log.file", "logging/api.log")

	// Policy defaults: time/geo checks are opt-in, permission aggregation is
	// on with a five-minute refresh window.
	viper.SetDefault("policies.time.enabled", false)
	viper.SetDefault("policies.time.businessHours.startHour", 9)
	viper.SetDefault("policies.time.businessHours.endHour", 18)
	viper.SetDefault("policies.time.businessHours.businessDays", []int{1, 2, 3, 4, 5})
	viper.SetDefault("policies.geo.enabled", false)
	viper.SetDefault("policies.permissions.enabled", true)
	viper.SetDefault("policies.permissions.refreshIntervalSeconds", 300)

	// Attempt to read the config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No config file found. Using default settings and environment variables.")
		} else {
			return err
		}
	}

	// Unmarshal the configuration into the Configuration struct
	err := viper.Unmarshal(&config)
	if err != nil {
		return err
	}

	return nil
}

// GetConfig returns the loaded configuration
func GetConfig() *Configuration {
	return config
}

// GetString retrieves a string value from the configuration
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt retrieves an integer value from the configuration
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool retrieves a boolean value from the configuration
func GetBool(key string) bool {
	return viper.GetBool(key)
}
