// Package portal holds the club portal's state and the operations on it.
//
// App is the single state container: entity collections, the home banner,
// the login session, and the notifier. Every operation takes the App lock,
// so it behaves like a single-threaded UI loop even though file reads and
// message timers complete on other goroutines.
package portal

import (
	"io"
	"sync"
	"time"

	"club-portal/media"
	"club-portal/storage"

	"github.com/sirupsen/logrus"
)

// Storage slot names.
const (
	SlotUsers         = "users"
	SlotWork          = "work"
	SlotEvents        = "events"
	SlotAchievements  = "achievements"
	SlotArticles      = "articles"
	SlotPhotos        = "photos"
	SlotHomePageImage = "homePageImage"
)

// Slots lists every slot the portal persists, in display order.
var Slots = []string{SlotUsers, SlotWork, SlotEvents, SlotAchievements, SlotArticles, SlotPhotos, SlotHomePageImage}

type App struct {
	mu sync.Mutex

	store    *storage.Store
	log      logrus.FieldLogger
	clock    Clock
	notifier *Notifier
	reader   media.DataURIReader
	seed     *Seed

	users        *Collection[string, User]
	work         *Collection[int, WorkItem]
	events       *Collection[int, Event]
	achievements *Collection[int, Achievement]
	articles     *Collection[int, Article]
	photos       *Collection[int, Photo]
	banner       string

	session session
	uploads map[uploadTarget]string
}

type options struct {
	logger logrus.FieldLogger
	clock  Clock
	ttl    time.Duration
	reader media.DataURIReader
	seed   *Seed
}

type Option func(*options)

func WithLogger(l logrus.FieldLogger) Option { return func(o *options) { o.logger = l } }

func WithClock(c Clock) Option { return func(o *options) { o.clock = c } }

// WithMessageTTL sets how long notifications stay visible.
func WithMessageTTL(d time.Duration) Option { return func(o *options) { o.ttl = d } }

// WithReader sets the file reader used by photo and banner uploads.
func WithReader(r media.DataURIReader) Option { return func(o *options) { o.reader = r } }

// WithSeed replaces the built-in fallback dataset.
func WithSeed(s *Seed) Option { return func(o *options) { o.seed = s } }

// New loads every collection from store, falling back to the seed for
// slots that are empty or unreadable.
func New(store *storage.Store, opts ...Option) *App {
	o := options{ttl: DefaultMessageTTL}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		o.logger = l
	}
	if o.clock == nil {
		o.clock = SystemClock
	}
	if o.reader == nil {
		o.reader = media.NewReader(media.DefaultMaxBytes, 0)
	}
	if o.seed == nil {
		o.seed = DefaultSeed()
	}

	a := &App{
		store:    store,
		log:      o.logger,
		clock:    o.clock,
		notifier: NewNotifier(o.clock, o.ttl),
		reader:   o.reader,
		seed:     o.seed,
		session:  session{page: PageHome},
		uploads:  make(map[uploadTarget]string),
	}
	a.load()
	return a
}

func (a *App) load() {
	s := a.seed
	a.users = loadCollection(a.store, SlotUsers, userKey, s.Users)
	a.work = loadCollection(a.store, SlotWork, workKey, s.Work)
	a.events = loadCollection(a.store, SlotEvents, eventKey, s.Events)
	a.achievements = loadCollection(a.store, SlotAchievements, achievementKey, s.Achievements)
	a.articles = loadCollection(a.store, SlotArticles, articleKey, s.Articles)
	a.photos = loadCollection(a.store, SlotPhotos, photoKey, s.Photos)
	a.banner = storage.Load(a.store, SlotHomePageImage, s.HomePageImage)
	a.log.WithFields(logrus.Fields{
		"users":  a.users.Len(),
		"work":   a.work.Len(),
		"events": a.events.Len(),
		"photos": a.photos.Len(),
	}).Debug("portal state loaded")
}

// Reset overwrites every slot with seed and logs everyone out.
func (a *App) Reset(seed *Seed) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.users.set(seed.Users)
	a.work.set(seed.Work)
	a.events.set(seed.Events)
	a.achievements.set(seed.Achievements)
	a.articles.set(seed.Articles)
	a.photos.set(seed.Photos)
	a.setBanner(seed.HomePageImage)
	a.session = session{page: PageHome}
	clear(a.uploads)
	a.log.Info("portal data reset to seed")
}

// Notifier exposes the message and confirmation state.
func (a *App) Notifier() *Notifier { return a.notifier }

func (a *App) Users() []User {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.users.Items()
}

func (a *App) User(id string) (User, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.users.Find(id)
}

// UserName returns the display name for id, or id itself if unknown.
func (a *App) UserName(id string) string {
	if u, ok := a.User(id); ok {
		return u.Name
	}
	return id
}

func (a *App) WorkItems() []WorkItem {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.work.Items()
}

func (a *App) Events() []Event {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.events.Items()
}

func (a *App) Achievements() []Achievement {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.achievements.Items()
}

func (a *App) Articles() []Article {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.articles.Items()
}

func (a *App) Photos() []Photo {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.photos.Items()
}

// Banner returns the home page image data URI, or "" when none is set.
func (a *App) Banner() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.banner
}

// requestDestructive checks c, then opens a confirmation. On accept the
// permission is checked again and apply runs under the app lock; its return
// value, if non-empty, is shown as a success message.
func (a *App) requestDestructive(c Capability, prompt string, apply func() string) error {
	a.mu.Lock()
	err := a.authorize(c)
	a.mu.Unlock()
	if err != nil {
		return err
	}

	a.notifier.Confirm(prompt, func() {
		a.mu.Lock()
		if err := a.authorize(c); err != nil {
			a.mu.Unlock()
			return
		}
		msg := apply()
		a.mu.Unlock()
		if msg != "" {
			a.notifier.Show(MessageSuccess, msg)
		}
	}, nil)
	return nil
}
