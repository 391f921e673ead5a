package config

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// flagKeys maps command line flags onto config keys.
var flagKeys = map[string]string{
	"origin":       "search.origin",
	"destination":  "search.destination",
	"start-date":   "search.start_date",
	"end-date":     "search.end_date",
	"min-stay":     "search.min_stay",
	"max-stay":     "search.max_stay",
	"adults":       "search.adults",
	"seat":         "search.seat",
	"provider":     "provider.kind",
	"provider-url": "provider.base_url",
	"workers":      "workers",
	"save":         "output.save",
	"output-dir":   "output.dir",
	"html":         "output.html",
	"pattern":      "output.pattern",
	"port":         "server.port",
	"log-level":    "log.level",
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var err error
	flags.VisitAll(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok || err != nil {
			return
		}
		if bindErr := v.BindPFlag(key, f); bindErr != nil {
			err = fmt.Errorf("bind flag %s: %w", f.Name, bindErr)
		}
	})
	return err
}

// SearchFlags registers the flags of the search command.
func SearchFlags(fs *pflag.FlagSet) {
	fs.StringP("origin", "o", "PUS", "origin airport code")
	fs.StringP("destination", "d", "KIX", "destination airport code")
	fs.StringP("start-date", "s", "", "first departure date, YYYY-MM-DD (default today+7)")
	fs.StringP("end-date", "e", "", "last return date, YYYY-MM-DD (default today+14)")
	fs.Int("min-stay", 5, "minimum stay in days")
	fs.Int("max-stay", 7, "maximum stay in days")
	fs.Int("adults", 1, "number of adult passengers")
	fs.String("seat", "economy", "seat class: economy, business or first")
	fs.String("provider", ProviderSimulated, "fare provider: simulated or http")
	fs.String("provider-url", "", "base url of the http fare provider")
	fs.Int("workers", 1, "concurrent provider queries")
	fs.Bool("save", false, "save the results to a json file")
	fs.String("output-dir", ".", "directory for result files")
	commonFlags(fs)
}

// ConsolidateFlags registers the flags of the consolidation command.
func ConsolidateFlags(fs *pflag.FlagSet) {
	fs.StringP("origin", "o", "PUS", "origin airport code")
	fs.StringP("destination", "d", "NRT", "destination airport code")
	fs.StringP("pattern", "p", "", `result file pattern (default "{ORIGIN}_{DESTINATION}_flights_*.json")`)
	fs.String("output-dir", ".", "directory for result files")
	fs.Bool("html", false, "also render the summary as html")
	commonFlags(fs)
}

// ServerFlags registers the flags of the http server.
func ServerFlags(fs *pflag.FlagSet) {
	fs.String("port", "8080", "listen port")
	fs.String("provider", ProviderSimulated, "fare provider: simulated or http")
	fs.String("provider-url", "", "base url of the http fare provider")
	fs.Int("workers", 4, "concurrent provider queries per sweep")
	fs.String("output-dir", ".", "directory searched for result files")
	commonFlags(fs)
}

func commonFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to a yaml config file")
	fs.String("log-level", "info", "log level: debug, info, warn or error")
}
