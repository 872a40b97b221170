package synth

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Catalog holds every pre-rendered sound by name. It is built once and is
// read-only afterwards, so it can be shared freely.
type Catalog struct {
	sampleRate int
	sounds     map[string]*Buffer
}

// NewCatalog renders all textures, melodic tones and ritual sounds at the
// given sample rate. Buffers are independent of each other and are rendered
// in parallel.
func NewCatalog(ctx context.Context, sampleRate int) (*Catalog, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: %d", sampleRate)
	}
	var recipes []recipe
	recipes = append(recipes, textureRecipes()...)
	recipes = append(recipes, melodicRecipes()...)
	recipes = append(recipes, ritualRecipes()...)

	var (
		mu     sync.Mutex
		sounds = make(map[string]*Buffer, len(recipes))
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, r := range recipes {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			buf := r.render(sampleRate)
			mu.Lock()
			sounds[r.name] = buf
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("render catalog: %w", err)
	}
	return &Catalog{sampleRate: sampleRate, sounds: sounds}, nil
}

// Get returns the buffer called name.
func (c *Catalog) Get(name string) (*Buffer, bool) {
	b, ok := c.sounds[name]
	return b, ok
}

// Names returns all sound names in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.sounds))
	for name := range c.sounds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Catalog) Len() int { return len(c.sounds) }

func (c *Catalog) SampleRate() int { return c.sampleRate }
