package config

import "testing"

func TestValidate_Drivers(t *testing.T) {
	tests := []struct {
		name    string
		engine  EngineConfig
		wantErr bool
	}{
		{"bleve", EngineConfig{Driver: DriverBleve}, false},
		{"redis", EngineConfig{Driver: DriverRedis, Addrs: []string{"localhost:6379"}}, false},
		{"redis without addrs", EngineConfig{Driver: DriverRedis}, true},
		{"unknown", EngineConfig{Driver: "solr"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Engine: tt.engine}
			cfg.ApplyDefaults()
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_UnknownDriverMessage(t *testing.T) {
	cfg := Config{Engine: EngineConfig{Driver: "solr"}}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
	expected := `engine.driver must be "bleve" or "redis", got "solr"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_LimitOrder(t *testing.T) {
	cfg := Config{Search: SearchConfig{DefaultLimit: 50, MaxLimit: 10}}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for default_limit > max_limit")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.Engine.Driver != DriverBleve {
		t.Errorf("expected Driver=bleve, got %q", cfg.Engine.Driver)
	}
	if cfg.Engine.KeyPrefix != "searchmap:" {
		t.Errorf("expected KeyPrefix='searchmap:', got %q", cfg.Engine.KeyPrefix)
	}
	if cfg.Engine.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Engine.ReadinessTimeout)
	}
	if cfg.Search.DefaultLimit != 20 {
		t.Errorf("expected DefaultLimit=20, got %d", cfg.Search.DefaultLimit)
	}
	if cfg.Search.MaxLimit != 1000 {
		t.Errorf("expected MaxLimit=1000, got %d", cfg.Search.MaxLimit)
	}
	if cfg.Search.MaxBatchSize != 100 {
		t.Errorf("expected MaxBatchSize=100, got %d", cfg.Search.MaxBatchSize)
	}
	if cfg.Search.Concurrency != 4 {
		t.Errorf("expected Concurrency=4, got %d", cfg.Search.Concurrency)
	}
	if cfg.Logging.Env != "local" {
		t.Errorf("expected Env=local, got %q", cfg.Logging.Env)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		Engine: EngineConfig{Driver: DriverRedis, KeyPrefix: "custom:", ReadinessTimeout: 3},
		Search: SearchConfig{DefaultLimit: 5, MaxLimit: 50, MaxBatchSize: 10, Concurrency: 1},
	}
	cfg.ApplyDefaults()

	if cfg.Engine.Driver != DriverRedis {
		t.Errorf("expected Driver=redis, got %q", cfg.Engine.Driver)
	}
	if cfg.Engine.KeyPrefix != "custom:" {
		t.Errorf("expected KeyPrefix='custom:', got %q", cfg.Engine.KeyPrefix)
	}
	if cfg.Search.DefaultLimit != 5 || cfg.Search.MaxLimit != 50 {
		t.Errorf("limits overridden: %+v", cfg.Search)
	}
}

func TestParse_ExpandsEnv(t *testing.T) {
	t.Setenv("SEARCHMAP_TEST_ADDR", "cache:6380")

	data := []byte(`
engine:
  driver: redis
  addrs: ["${SEARCHMAP_TEST_ADDR}"]
  password: "${SEARCHMAP_TEST_UNSET:-secret}"
search:
  default_limit: 10
logging:
  level: debug
`)
	cfg, err := Parse(data, "dev")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(cfg.Engine.Addrs) != 1 || cfg.Engine.Addrs[0] != "cache:6380" {
		t.Errorf("addrs = %v, want [cache:6380]", cfg.Engine.Addrs)
	}
	if cfg.Engine.Password != "secret" {
		t.Errorf("password = %q, want default", cfg.Engine.Password)
	}
	if cfg.Search.DefaultLimit != 10 {
		t.Errorf("default_limit = %d, want 10", cfg.Search.DefaultLimit)
	}
	if cfg.Logging.Env != "dev" || cfg.Logging.Level != "debug" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte("engine: [unclosed"), "local"); err == nil {
		t.Fatal("expected YAML error")
	}
	if _, err := Parse([]byte("engine:\n  driver: redis\n"), "local"); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoad_Local(t *testing.T) {
	cfg, err := Load("local")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Engine.Driver != DriverBleve {
		t.Errorf("driver = %q, want bleve", cfg.Engine.Driver)
	}
}
