package engine

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"tactics-server/internal/hexgrid"
	"tactics-server/internal/movement"
	"tactics-server/internal/navrange"
	"tactics-server/internal/smooth"
	"tactics-server/pkg/utils"

	"gopkg.in/yaml.v3"
)

// GridConfig - размеры и местность карты.
type GridConfig struct {
	Width     int     `yaml:"width" json:"width"`
	Height    int     `yaml:"height" json:"height"`
	HexSize   float64 `yaml:"hex_size" json:"hexSize"`
	Template  string  `yaml:"template" json:"template"`
	Obstacles float64 `yaml:"obstacles" json:"obstacles"` // доля дополнительных препятствий
	// Name - имя карты. Одно имя при одном сиде дает одну и ту же карту.
	Name      string  `yaml:"name" json:"name,omitempty"`
}

// RangeConfig - политика фильтрации досягаемости.
type RangeConfig struct {
	Policy     string  `yaml:"policy" json:"policy"`
	Tolerance  float64 `yaml:"tolerance" json:"tolerance"`
	Projection string  `yaml:"projection" json:"projection"` // identity | isometric
}

// SmoothConfig - стратегия сглаживания и ее параметр.
type SmoothConfig struct {
	Kind  string `yaml:"kind" json:"kind"`
	Param int    `yaml:"param" json:"param"`
}

// SmoothingConfig - отдельно для контуров области и для пути.
type SmoothingConfig struct {
	Boundary SmoothConfig `yaml:"boundary" json:"boundary"`
	Path     SmoothConfig `yaml:"path" json:"path"`
}

// MovementConfig - параметры исполнителя пути.
type MovementConfig struct {
	Speed         float64       `yaml:"speed" json:"speed"` // мировых единиц в секунду
	ReachDistance float64       `yaml:"reach_distance" json:"reachDistance"`
	StuckTimeout  time.Duration `yaml:"stuck_timeout" json:"stuckTimeout"`
	Milestones    []float64     `yaml:"milestones" json:"milestones"`
}

// PartyMember - агент, создаваемый при старте сессии.
type PartyMember struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Team        string `yaml:"team" json:"team"`
	MaxDistance int    `yaml:"max_distance" json:"maxDistance"`
	Initiative  int    `yaml:"initiative" json:"initiative"`
}

// Config хранит параметры запуска движка
type Config struct {
	// Seed - мастер-зерно. От него зависит карта и стартовые клетки.
	Seed int64  `yaml:"seed" json:"seed"`
	Port string `yaml:"port" json:"port"`

	LogLevel  string `yaml:"log_level" json:"logLevel"`
	LogFormat string `yaml:"log_format" json:"logFormat"`

	Grid      GridConfig      `yaml:"grid" json:"grid"`
	Range     RangeConfig     `yaml:"range" json:"range"`
	Smoothing SmoothingConfig `yaml:"smoothing" json:"smoothing"`
	Movement  MovementConfig  `yaml:"movement" json:"movement"`

	// Tick - шаг симуляции движения и частота рассылки снимков во время движения.
	Tick time.Duration `yaml:"tick" json:"tick"`
	// TurnTimeout - через сколько бездействия ход передается дальше. 0 - без лимита.
	TurnTimeout time.Duration `yaml:"turn_timeout" json:"turnTimeout"`
	// BootstrapDeadline - лимит на построение карты при старте.
	BootstrapDeadline time.Duration `yaml:"bootstrap_deadline" json:"bootstrapDeadline"`

	Party []PartyMember `yaml:"party" json:"party"`
}

// NewConfig создает конфиг по умолчанию (случайный сид)
func NewConfig() Config {
	return Config{
		Seed:      time.Now().UnixNano(),
		Port:      "8080",
		LogLevel:  "info",
		LogFormat: "text",
		Grid: GridConfig{
			Width:     16,
			Height:    12,
			HexSize:   32,
			Template:  "scrub",
			Obstacles: 0,
		},
		Range: RangeConfig{
			Policy:     navrange.PolicyNone,
			Tolerance:  1.0,
			Projection: "identity",
		},
		Smoothing: SmoothingConfig{
			Boundary: SmoothConfig{Kind: smooth.KindChaikin, Param: 2},
			Path:     SmoothConfig{Kind: smooth.KindCatmullRom, Param: 8},
		},
		Movement: MovementConfig{
			Speed:         120,
			ReachDistance: 4,
			StuckTimeout:  time.Second,
			Milestones:    append([]float64(nil), movement.DefaultMilestones...),
		},
		Tick:              50 * time.Millisecond,
		TurnTimeout:       60 * time.Second,
		BootstrapDeadline: 5 * time.Second,
		Party: []PartyMember{
			{ID: "scout_1", Name: "Разведчик", Team: "blue", MaxDistance: 6, Initiative: 3},
			{ID: "knight_1", Name: "Рыцарь", Team: "blue", MaxDistance: 3, Initiative: 1},
			{ID: "archer_1", Name: "Лучник", Team: "red", MaxDistance: 4, Initiative: 2},
		},
	}
}

// MapSeed - зерно генератора карты: мастер-сид, смешанный с именем карты.
func (c Config) MapSeed() int64 {
	if c.Grid.Name == "" {
		return c.Seed
	}
	return c.Seed ^ utils.StringToSeed(c.Grid.Name)
}

// LoadConfig читает YAML поверх значений по умолчанию и проверяет результат.
func LoadConfig(path string) (Config, error) {
	cfg := NewConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// ErrInvalidConfig оборачивает все ошибки проверки конфига.
var ErrInvalidConfig = errors.New("invalid config")

// Validate проверяет конфиг целиком и возвращает все найденные проблемы.
func (c Config) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if c.Grid.Width <= 0 || c.Grid.Height <= 0 {
		add("grid size must be positive, got %dx%d", c.Grid.Width, c.Grid.Height)
	}
	if c.Grid.HexSize <= 0 {
		add("grid.hex_size must be positive")
	}
	if c.Grid.Obstacles < 0 || c.Grid.Obstacles >= 1 {
		add("grid.obstacles must be in [0, 1)")
	}
	if _, err := c.Policy(); err != nil {
		add("range: %v", err)
	}
	if _, err := smooth.New(c.Smoothing.Boundary.Kind, c.Smoothing.Boundary.Param); err != nil {
		add("smoothing.boundary: %v", err)
	}
	if _, err := smooth.New(c.Smoothing.Path.Kind, c.Smoothing.Path.Param); err != nil {
		add("smoothing.path: %v", err)
	}
	if c.Movement.Speed <= 0 {
		add("movement.speed must be positive")
	}
	if c.Movement.ReachDistance <= 0 {
		add("movement.reach_distance must be positive")
	}
	for _, m := range c.Movement.Milestones {
		if m <= 0 || m > 1 {
			add("movement.milestones must be in (0, 1], got %v", m)
		}
	}
	if c.Tick <= 0 {
		add("tick must be positive")
	}
	if c.BootstrapDeadline <= 0 {
		add("bootstrap_deadline must be positive")
	}
	if len(c.Party) == 0 {
		add("party must not be empty")
	}
	seen := make(map[string]bool)
	for i, m := range c.Party {
		if strings.TrimSpace(m.ID) == "" {
			add("party[%d]: id is required", i)
		}
		if seen[m.ID] {
			add("party[%d]: duplicate id %q", i, m.ID)
		}
		seen[m.ID] = true
		if m.MaxDistance < 0 {
			add("party[%d]: max_distance must be >= 0", i)
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// Projection возвращает проекцию по имени.
func (c Config) Projection() (navrange.Projection, error) {
	switch strings.ToLower(strings.TrimSpace(c.Range.Projection)) {
	case "", "identity":
		return navrange.Identity, nil
	case "isometric":
		return navrange.Isometric, nil
	default:
		return navrange.Projection{}, fmt.Errorf("unknown projection %q", c.Range.Projection)
	}
}

// Policy собирает политику досягаемости из секции range.
func (c Config) Policy() (navrange.Policy, error) {
	proj, err := c.Projection()
	if err != nil {
		return nil, err
	}
	return navrange.ParsePolicy(c.Range.Policy, c.Layout(), proj, c.Range.Tolerance)
}

// Layout - геометрия сетки по hex_size.
func (c Config) Layout() hexgrid.Layout {
	return hexgrid.NewLayout(c.Grid.HexSize)
}

// ExecutorConfig переводит секцию movement в параметры исполнителя.
func (c Config) ExecutorConfig() movement.ExecutorConfig {
	return movement.ExecutorConfig{
		Speed:         c.Movement.Speed,
		ReachDistance: c.Movement.ReachDistance,
		StuckTimeout:  c.Movement.StuckTimeout.Seconds(),
		Milestones:    c.Movement.Milestones,
	}
}
