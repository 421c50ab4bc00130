package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jobbmapper/jobbmapper-api/internal/adapters/dataset"
	natsadapter "github.com/jobbmapper/jobbmapper-api/internal/adapters/nats"
	"github.com/jobbmapper/jobbmapper-api/internal/core/domain"
	"github.com/jobbmapper/jobbmapper-api/internal/core/ports"
	"github.com/jobbmapper/jobbmapper-api/internal/core/usecases"
)

// viewportFlags are shared by query and municipalities.
type viewportFlags struct {
	neLat, neLng, swLat, swLng float64
	file                       string
}

func (v *viewportFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&v.neLat, "ne-lat", 0, "North-east latitude")
	cmd.Flags().Float64Var(&v.neLng, "ne-lng", 0, "North-east longitude")
	cmd.Flags().Float64Var(&v.swLat, "sw-lat", 0, "South-west latitude")
	cmd.Flags().Float64Var(&v.swLng, "sw-lng", 0, "South-west longitude")
	cmd.Flags().StringVarP(&v.file, "file", "f", "", "Read the municipality table from this CSV instead of the cache")
}

// bounds returns nil unless every corner flag was given.
func (v *viewportFlags) bounds(cmd *cobra.Command) *domain.Bounds {
	for _, name := range []string{"ne-lat", "ne-lng", "sw-lat", "sw-lng"} {
		if !cmd.Flags().Changed(name) {
			return nil
		}
	}
	return &domain.Bounds{
		NorthEast: domain.GeoPoint{Lat: v.neLat, Lng: v.neLng},
		SouthWest: domain.GeoPoint{Lat: v.swLat, Lng: v.swLng},
	}
}

func (v *viewportFlags) provider() (ports.DatasetProvider, error) {
	if v.file == "" {
		return dataset.NewCacheFirst(cfg.Dataset.CachePath, cfg.Dataset.URL, fetchTimeout()), nil
	}
	data, err := os.ReadFile(v.file)
	if err != nil {
		return nil, err
	}
	return dataset.Static(data), nil
}

func fetchTimeout() time.Duration {
	return time.Duration(cfg.Dataset.FetchTimeout) * time.Second
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func newFetchCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download the municipality table into the local cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			var provider ports.DatasetProvider = dataset.NewCacheFirst(cfg.Dataset.CachePath, cfg.Dataset.URL, fetchTimeout())
			if force {
				// The cold fetcher swaps the file in only after a good download.
				provider = dataset.NewColdFetcher(cfg.Dataset.URL, cfg.Dataset.CachePath, fetchTimeout())
			}
			ds, err := usecases.LoadDataset(cmd.Context(), provider)
			if err != nil {
				return err
			}
			fmt.Printf("%d municipalities cached at %s\n", ds.Len(), cfg.Dataset.CachePath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Download again and replace the existing cache")
	return cmd
}

func newQueryCmd() *cobra.Command {
	var (
		vp             viewportFlags
		term, company  string
		sortSpec       string
		pwd            bool
		workplaceTypes []string
		policyName     string
	)
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Build the job-search URL for a viewport",
		Example: `  jobbctl query --ne-lat -8.0 --ne-lng -34.8 --sw-lat -8.1 --sw-lng -34.95 --term dev
  jobbctl query --ne-lat -8.0 --ne-lng -34.8 --sw-lat -8.1 --sw-lng -34.95 --sort date_desc --workplace-types remote,hybrid`,
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, err := vp.provider()
			if err != nil {
				return err
			}
			ds, err := usecases.LoadDataset(cmd.Context(), provider)
			if err != nil {
				fmt.Fprintln(os.Stderr, "warning:", err)
			}

			if policyName == "" {
				policyName = cfg.Search.RegionPolicy
			}
			policy, err := usecases.PolicyByName(policyName)
			if err != nil {
				return err
			}

			svc := usecases.NewSearchService(ds, usecases.SearchOptions{
				BaseURL:           cfg.Search.BaseURL,
				MaxMunicipalities: cfg.Search.MaxMunicipalities,
				Policy:            policy,
				PolicyName:        policyName,
			}, nil, nil)

			out := svc.BuildURL(cmd.Context(), domain.Query{
				Bounds:         vp.bounds(cmd),
				Term:           term,
				Company:        company,
				Sort:           sortSpec,
				PWD:            pwd,
				WorkplaceTypes: workplaceTypes,
			})

			if jsonOutput {
				return printJSON(out)
			}
			if !out.OK() {
				return fmt.Errorf("%s: %s", out.Kind, out.Message)
			}
			fmt.Println(out.URL)
			return nil
		},
	}
	vp.register(cmd)
	cmd.Flags().StringVar(&term, "term", "", "Free-text search term")
	cmd.Flags().StringVar(&company, "company", "", "Company name appended to the term")
	cmd.Flags().StringVar(&sortSpec, "sort", "", "Sort as field_direction, e.g. date_desc")
	cmd.Flags().BoolVar(&pwd, "pwd", false, "Only jobs open to people with disabilities")
	cmd.Flags().StringSliceVar(&workplaceTypes, "workplace-types", nil, "Workplace type tags")
	cmd.Flags().StringVar(&policyName, "policy", "", "Region policy: first or majority (default from config)")
	return cmd
}

func newMunicipalitiesCmd() *cobra.Command {
	var vp viewportFlags
	cmd := &cobra.Command{
		Use:   "municipalities",
		Short: "List the municipalities inside a viewport",
		RunE: func(cmd *cobra.Command, args []string) error {
			b := vp.bounds(cmd)
			if b == nil {
				return errors.New("--ne-lat, --ne-lng, --sw-lat and --sw-lng are required")
			}
			provider, err := vp.provider()
			if err != nil {
				return err
			}
			ds, err := usecases.LoadDataset(cmd.Context(), provider)
			if err != nil {
				return err
			}

			matches := ds.Within(*b)
			if jsonOutput {
				return printJSON(matches)
			}
			for _, m := range matches {
				fmt.Printf("%-40s %-20s %10.5f %10.5f\n", m.Name, domain.ResolveRegion(m.RegionCode), m.Latitude, m.Longitude)
			}
			fmt.Printf("%d municipalities\n", len(matches))
			return nil
		},
	}
	vp.register(cmd)
	return cmd
}

func newRegionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "regions",
		Short: "Print the state table",
		RunE: func(cmd *cobra.Command, args []string) error {
			regions := domain.Regions()
			if jsonOutput {
				return printJSON(regions)
			}
			for _, r := range regions {
				fmt.Printf("%s  %s  %s\n", r.Code, r.Abbreviation, r.Name)
			}
			return nil
		},
	}
}

func newTailCmd() *cobra.Command {
	var natsURL string
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Follow search events published by the API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if natsURL == "" {
				natsURL = cfg.NATS.URL
			}
			if natsURL == "" {
				return errors.New("nats.url is not configured; pass --nats")
			}

			sub, err := natsadapter.NewSubscriber(natsURL)
			if err != nil {
				return err
			}
			defer sub.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			err = sub.SubscribeSearchEvents(ctx, func(ctx context.Context, e *domain.SearchEvent) error {
				if jsonOutput {
					return printJSON(e)
				}
				fmt.Printf("%s  %-20s matches=%-3d region=%q term=%t cached=%t\n",
					e.Time.Format(time.RFC3339), e.Outcome, e.Matches, e.Region, e.HasTerm, e.Cached)
				return nil
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stderr, "following %s on %s, Ctrl-C to stop\n", strings.TrimSuffix(natsadapter.SearchSubjectPrefix, ".")+".*", natsURL)
			<-ctx.Done()
			return nil
		},
	}
	cmd.Flags().StringVar(&natsURL, "nats", "", "NATS URL (default from config)")
	return cmd
}
