package portal

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var defaultSeedYAML []byte

// Seed is the initial dataset used for empty or unreadable slots.
type Seed struct {
	Users         []User        `yaml:"users"`
	Work          []WorkItem    `yaml:"work"`
	Events        []Event       `yaml:"events"`
	Achievements  []Achievement `yaml:"achievements"`
	Articles      []Article     `yaml:"articles"`
	Photos        []Photo       `yaml:"photos"`
	HomePageImage string        `yaml:"homePageImage"`
}

// DefaultSeed returns a fresh copy of the built-in dataset.
func DefaultSeed() *Seed {
	seed, err := ParseSeed(defaultSeedYAML)
	if err != nil {
		panic(fmt.Sprintf("portal: embedded seed is invalid: %v", err))
	}
	return seed
}

// LoadSeedFile reads a seed dataset from a YAML file.
func LoadSeedFile(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return ParseSeed(data)
}

func ParseSeed(data []byte) (*Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	if err := seed.check(); err != nil {
		return nil, err
	}
	return &seed, nil
}

func (s *Seed) check() error {
	seen := make(map[string]bool, len(s.Users))
	for _, u := range s.Users {
		if u.ID == "" {
			return fmt.Errorf("seed: user with empty id")
		}
		if seen[u.ID] {
			return fmt.Errorf("seed: duplicate user id %q", u.ID)
		}
		if u.Role != RoleAdmin && u.Role != RoleMember {
			return fmt.Errorf("seed: user %q has unknown role %q", u.ID, u.Role)
		}
		seen[u.ID] = true
	}
	if !seen[AdminID] {
		return fmt.Errorf("seed: missing %q user", AdminID)
	}
	for _, w := range s.Work {
		if !seen[w.UserID] {
			return fmt.Errorf("seed: work %d references unknown user %q", w.ID, w.UserID)
		}
	}
	for _, p := range s.Photos {
		if !seen[p.UserID] {
			return fmt.Errorf("seed: photo %d references unknown user %q", p.ID, p.UserID)
		}
	}
	if err := uniqueIDs("work", s.Work, workKey); err != nil {
		return err
	}
	if err := uniqueIDs("events", s.Events, eventKey); err != nil {
		return err
	}
	if err := uniqueIDs("achievements", s.Achievements, achievementKey); err != nil {
		return err
	}
	if err := uniqueIDs("articles", s.Articles, articleKey); err != nil {
		return err
	}
	return uniqueIDs("photos", s.Photos, photoKey)
}

func uniqueIDs[T any](name string, items []T, key func(T) int) error {
	seen := make(map[int]bool, len(items))
	for _, item := range items {
		id := key(item)
		if seen[id] {
			return fmt.Errorf("seed: duplicate %s id %d", name, id)
		}
		seen[id] = true
	}
	return nil
}
