package cmd

import (
	"fmt"

	"github.com/janisozaur/valgrind/internal/cacheconfig"
	"github.com/janisozaur/valgrind/internal/cachesim"
	"github.com/janisozaur/valgrind/internal/cg"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// tripleValue is a <size>,<assoc>,<line_size> cache flag.
type tripleValue struct {
	t cacheconfig.Triple
}

var _ pflag.Value = (*tripleValue)(nil)

func newTripleValue() *tripleValue {
	return &tripleValue{t: cacheconfig.Unset}
}

func (v *tripleValue) String() string {
	if !v.t.Defined() {
		return ""
	}
	return fmt.Sprintf("%d,%d,%d", v.t.Size, v.t.Assoc, v.t.LineSize)
}

func (v *tripleValue) Set(s string) error {
	t, err := cacheconfig.ParseTriple(s)
	if err != nil {
		return err
	}
	v.t = t
	return nil
}

func (v *tripleValue) Type() string {
	return "size,assoc,line"
}

func init() {
	rootCmd.AddCommand(cachesCmd)

	rootCmd.PersistentFlags().Var(newTripleValue(), "I1", "set I1 cache manually (size,assoc,line_size)")
	rootCmd.PersistentFlags().Var(newTripleValue(), "D1", "set D1 cache manually (size,assoc,line_size)")
	rootCmd.PersistentFlags().Var(newTripleValue(), "L2", "set L2 cache manually (size,assoc,line_size)")
	viper.BindPFlag("cache.I1", rootCmd.PersistentFlags().Lookup("I1"))
	viper.BindPFlag("cache.D1", rootCmd.PersistentFlags().Lookup("D1"))
	viper.BindPFlag("cache.L2", rootCmd.PersistentFlags().Lookup("L2"))
}

// userCaches reads the cache options, which may come from flags, the
// config file or the environment.
func userCaches() (cacheconfig.Caches, error) {
	caches := cacheconfig.UnsetCaches
	for _, c := range []struct {
		key string
		dst *cacheconfig.Triple
	}{
		{"cache.I1", &caches.I1},
		{"cache.D1", &caches.D1},
		{"cache.L2", &caches.L2},
	} {
		opt := viper.GetString(c.key)
		if opt == "" {
			continue
		}
		t, err := cacheconfig.ParseTriple(opt)
		if err != nil {
			return caches, err
		}
		*c.dst = t
	}
	return caches, nil
}

var cachesCmd = &cobra.Command{
	Use:   "caches",
	Short: "Show the cache configuration a run would simulate",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := userCaches()
		if err != nil {
			return err
		}
		caches, err := cacheconfig.Configure(user, cacheconfig.NewCPUIDDetector(), newLogger(false))
		if err != nil {
			return err
		}
		for _, kind := range []cg.CacheKind{cg.I1, cg.D1, cg.L2} {
			c := cachesim.New(kind, caches.Get(kind))
			fmt.Printf("%-3s %-28s %s\n", c.Kind(), c.Geometry(), c.Desc())
		}
		return nil
	},
}
