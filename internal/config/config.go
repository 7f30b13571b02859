// Package config is the single source of truth for every tunable the
// simulation core reads: one struct per concern, a Default* constructor
// per struct, and an env-var overlay (Load) built on the
// getEnvInt/getEnvFloat helpers.
package config

import (
	"os"
	"strconv"
)

// PhysicsConfig holds the global physics constants.
type PhysicsConfig struct {
	G           float64 // gravitational constant
	CentralMass float64 // mass of the default central well
	Drag        float64 // exponential per-tick drag coefficient
	MaxVelocity float64 // speed clamp, units/s
	TickRate    int     // ticks per second
}

func DefaultPhysics() PhysicsConfig {
	return PhysicsConfig{
		G:           6.67,
		CentralMass: 10_000,
		Drag:        0.002,
		MaxVelocity: 500,
		TickRate:    30,
	}
}

// BoostConfig holds thrust application and boost-mass-cost balance.
type BoostConfig struct {
	BaseThrust    float64 // acceleration applied per unit thrust input
	BaseCost      float64 // flat mass cost per second of boosting
	MassCostRatio float64 // additional mass cost per second, proportional to player mass
}

func DefaultBoost() BoostConfig {
	return BoostConfig{
		BaseThrust:    200,
		BaseCost:      2.0,
		MassCostRatio: 0.01,
	}
}

// MassConfig holds player mass balance.
type MassConfig struct {
	Start       float64
	Min         float64
	AbsorbCap   float64
	AbsorbRate  float64
	RadiusScale float64
}

func DefaultMass() MassConfig {
	return MassConfig{
		Start:       100,
		Min:         10,
		AbsorbCap:   200,
		AbsorbRate:  0.7,
		RadiusScale: 2,
	}
}

// EjectConfig holds charge-release firing balance.
type EjectConfig struct {
	MinChargeSeconds float64
	MaxChargeSeconds float64
	MinMass          float64
	MaxMassRatio     float64 // fraction of player mass at full charge
	MinSpeed         float64
	MaxSpeed         float64
	Lifetime         float64 // seconds
	PostFireCooldown float64 // seconds; minimum gap between consecutive releases
}

func DefaultEject() EjectConfig {
	return EjectConfig{
		MinChargeSeconds: 0.2,
		MaxChargeSeconds: 1.0,
		MinMass:          10,
		MaxMassRatio:     0.5,
		MinSpeed:         100,
		MaxSpeed:         300,
		Lifetime:         8,
		PostFireCooldown: 0.15,
	}
}

// CollisionConfig holds player-vs-player resolution thresholds.
type CollisionConfig struct {
	Overwhelm   float64
	Decisive    float64
	Restitution float64
}

func DefaultCollision() CollisionConfig {
	return CollisionConfig{
		Overwhelm:   2.0,
		Decisive:    1.5,
		Restitution: 0.8,
	}
}

// ArenaConfig holds the radii and collapse pacing constants scaled by the
// alive-human count.
type ArenaConfig struct {
	CoreRadius      float64
	InnerRadius     float64
	MiddleRadius    float64
	OuterRadius     float64
	EscapeRadius    float64
	CollapseEnabled bool // gated off in the current mode
	CollapseRate    float64
	EscapeMassDrain float64 // per second, scaled by excess distance
	MinWells        int
	MaxWellsBase    int
	MinWellSpacing  float64 // fraction of orbit spacing
	PlacementTries  int
}

func DefaultArena() ArenaConfig {
	return ArenaConfig{
		CoreRadius:      50,
		InnerRadius:     400,
		MiddleRadius:    900,
		OuterRadius:     1600,
		EscapeRadius:    2000,
		CollapseEnabled: false,
		CollapseRate:    0,
		EscapeMassDrain: 0.5,
		MinWells:        1,
		MaxWellsBase:    6,
		MinWellSpacing:  0.8,
		PlacementTries:  50,
	}
}

// SpawnConfig holds player spawn/respawn balance.
type SpawnConfig struct {
	ProtectionSeconds float64
	ZoneMin           float64
	ZoneMax           float64
	InitialSpeed      float64
	SafeDistance      float64
	Attempts          int
	RespawnDelay      float64
}

func DefaultSpawn() SpawnConfig {
	return SpawnConfig{
		ProtectionSeconds: 3,
		ZoneMin:           250,
		ZoneMax:           350,
		InitialSpeed:      50,
		SafeDistance:      80,
		Attempts:          10,
		RespawnDelay:      2,
	}
}

// AIConfig holds bot population balance.
type AIConfig struct {
	Count            int
	DecisionInterval float64
	AggressionRadius float64
	FleeMassRatio    float64
}

func DefaultAI() AIConfig {
	return AIConfig{
		Count:            0,
		DecisionInterval: 0.5,
		AggressionRadius: 200,
		FleeMassRatio:    0.5,
	}
}

// GovernorConfig holds the performance governor's rolling-window size
// and the avg/target ratio thresholds that separate its five status
// levels.
type GovernorConfig struct {
	SampleWindow           int
	ExcellentRatio         float64
	WarningRatio           float64
	CriticalRatio          float64
	CatastrophicRatio      float64
	MinSamplesBeforeStatus int
}

func DefaultGovernor() GovernorConfig {
	return GovernorConfig{
		SampleWindow:           120,
		ExcellentRatio:         0.30,
		WarningRatio:           0.70,
		CriticalRatio:          0.90,
		CatastrophicRatio:      1.50,
		MinSamplesBeforeStatus: 10,
	}
}

// LODConfig holds the bot engine's SoA/LOD tuning.
type LODConfig struct {
	DormancyEnabled       bool
	AdaptiveDormancy      bool
	ZoneQueriesEnabled    bool
	BehaviorBatching      bool
	ParallelEnabled       bool
	FullRadius            float64
	ReducedRadius         float64
	DormantRadius         float64
	TargetTickMs          float64
	CriticalTickMs        float64
	AdaptationRate        float64
	MinLODScale           float64
	MaxLODScale           float64
	ReducedUpdateInterval int
	DormantUpdateInterval int
	ZoneCellSize          float64
}

func DefaultLOD() LODConfig {
	return LODConfig{
		DormancyEnabled:       true,
		AdaptiveDormancy:      true,
		ZoneQueriesEnabled:    true,
		BehaviorBatching:      true,
		ParallelEnabled:       true,
		FullRadius:            500,
		ReducedRadius:         2000,
		DormantRadius:         5000,
		TargetTickMs:          30,
		CriticalTickMs:        50,
		AdaptationRate:        0.1,
		MinLODScale:           0.5,
		MaxLODScale:           2.0,
		ReducedUpdateInterval: 4,
		DormantUpdateInterval: 8,
		ZoneCellSize:          4096,
	}
}

// AOIConfig holds the area-of-interest filter's radius model and
// leaderboard/density-grid tuning.
type AOIConfig struct {
	BaseRadius      float64 // radius at zoom = 1.0
	MinZoom         float64
	MaxZoom         float64
	TopN            int
	DensityGridSize int
}

func DefaultAOI() AOIConfig {
	return AOIConfig{
		BaseRadius:      1560,
		MinZoom:         0.1,
		MaxZoom:         1.0,
		TopN:            256,
		DensityGridSize: 16,
	}
}

// DeltaConfig holds the delta encoder's change-detection epsilons and
// distance-aware rate limiting.
type DeltaConfig struct {
	PositionEpsilon float64
	VelocityEpsilon float64
	RotationEpsilon float64
	MassEpsilon     float64
	MaxBaselineAge  int // ticks; older baselines force a full snapshot
	MaxRateLimitGap int // ticks; a far entity is still refreshed at least this often
	NearDistance    float64
	FarDistance     float64
}

func DefaultDelta() DeltaConfig {
	return DeltaConfig{
		PositionEpsilon: 0.5,
		VelocityEpsilon: 1.0,
		RotationEpsilon: 0.01,
		MassEpsilon:     0.1,
		MaxBaselineAge:  90,
		MaxRateLimitGap: 10,
		NearDistance:    800,
		FarDistance:     3000,
	}
}

// GravityWaveConfig holds well-explosion shockwave parameters.
type GravityWaveConfig struct {
	Enabled        bool
	Speed          float64
	FrontThickness float64
	BaseImpulse    float64
	MaxRadius      float64
	ChargeDuration float64
	MinDelay       float64
	MaxDelay       float64
}

func DefaultGravityWaves() GravityWaveConfig {
	return GravityWaveConfig{
		Enabled:        true,
		Speed:          600,
		FrontThickness: 80,
		BaseImpulse:    250,
		MaxRadius:      2500,
		ChargeDuration: 2,
		MinDelay:       20,
		MaxDelay:       60,
	}
}

// DebrisZoneRate configures one debris size's spawn behavior in one zone.
type DebrisZoneRate struct {
	PerSecond     float64
	InitialCount  int
	OrbitalVelMin float64
	OrbitalVelMax float64
	Lifetime      float64
}

// DebrisConfig holds per-zone, per-size debris spawning.
type DebrisConfig struct {
	Small  DebrisZoneRate
	Medium DebrisZoneRate
	Large  DebrisZoneRate
}

func DefaultDebris() DebrisConfig {
	return DebrisConfig{
		Small:  DebrisZoneRate{PerSecond: 0.5, InitialCount: 40, OrbitalVelMin: 20, OrbitalVelMax: 60, Lifetime: 60},
		Medium: DebrisZoneRate{PerSecond: 0.2, InitialCount: 20, OrbitalVelMin: 15, OrbitalVelMax: 45, Lifetime: 90},
		Large:  DebrisZoneRate{PerSecond: 0.05, InitialCount: 8, OrbitalVelMin: 10, OrbitalVelMax: 30, Lifetime: 120},
	}
}

// ServerConfig holds admission caps and the HTTP listen address, the
// narrow surface the core exposes to the transport collaborator.
type ServerConfig struct {
	ListenAddr       string
	MaxPlayers       int
	MaxSpectators    int
	MaxIdleSeconds   float64
	InputQueueCap    int
	OutboundQueueCap int
}

func DefaultServer() ServerConfig {
	return ServerConfig{
		ListenAddr:       ":8080",
		MaxPlayers:       200,
		MaxSpectators:    50,
		MaxIdleSeconds:   30,
		InputQueueCap:    1024,
		OutboundQueueCap: 256,
	}
}

// AppConfig aggregates every config section. Load() builds it from
// defaults overlaid with environment variables.
type AppConfig struct {
	Physics      PhysicsConfig
	Boost        BoostConfig
	Mass         MassConfig
	Eject        EjectConfig
	Collision    CollisionConfig
	Arena        ArenaConfig
	Spawn        SpawnConfig
	AI           AIConfig
	Governor     GovernorConfig
	LOD          LODConfig
	AOI          AOIConfig
	Delta        DeltaConfig
	GravityWaves GravityWaveConfig
	Debris       DebrisConfig
	Server       ServerConfig
}

// Default returns the full default configuration with no env overlay.
func Default() AppConfig {
	return AppConfig{
		Physics:      DefaultPhysics(),
		Boost:        DefaultBoost(),
		Mass:         DefaultMass(),
		Eject:        DefaultEject(),
		Collision:    DefaultCollision(),
		Arena:        DefaultArena(),
		Spawn:        DefaultSpawn(),
		AI:           DefaultAI(),
		Governor:     DefaultGovernor(),
		LOD:          DefaultLOD(),
		AOI:          DefaultAOI(),
		Delta:        DefaultDelta(),
		GravityWaves: DefaultGravityWaves(),
		Debris:       DefaultDebris(),
		Server:       DefaultServer(),
	}
}

// Load builds the configuration from defaults overridden by recognized
// environment variables. This is the out-of-core "CLI/environment
// configuration loading" collaborator's minimal in-module counterpart —
// the core only needs a concrete Go type to hold the result.
func Load() AppConfig {
	cfg := Default()

	if v := getEnvInt("ORBIT_TICK_RATE", 0); v > 0 {
		cfg.Physics.TickRate = v
	}
	if v := getEnvFloat("ORBIT_MAX_VELOCITY", 0); v > 0 {
		cfg.Physics.MaxVelocity = v
	}
	if v := getEnvInt("ORBIT_MAX_PLAYERS", 0); v > 0 {
		cfg.Server.MaxPlayers = v
	}
	if v := getEnvInt("ORBIT_MAX_SPECTATORS", 0); v > 0 {
		cfg.Server.MaxSpectators = v
	}
	if v := os.Getenv("ORBIT_LISTEN_ADDR"); v != "" {
		cfg.Server.ListenAddr = v
	}
	if v := getEnvInt("ORBIT_AI_COUNT", -1); v >= 0 {
		cfg.AI.Count = v
	}
	if os.Getenv("ORBIT_LOD_DISABLED") == "true" {
		cfg.LOD.DormancyEnabled = false
		cfg.LOD.AdaptiveDormancy = false
		cfg.LOD.ZoneQueriesEnabled = false
		cfg.LOD.BehaviorBatching = false
		cfg.LOD.ParallelEnabled = false
	}

	return cfg
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
