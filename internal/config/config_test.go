package config

import "testing"

func TestValidateForServer_RequiresGitHubTokenAndDSN(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: Config{
				GitHub:    GitHubConfig{Token: "t"},
				Database:  DBConfig{DSN: "postgres://localhost/ragforge"},
				Embedding: EmbeddingConfig{Dimension: 768},
			},
			wantErr: false,
		},
		{
			name:    "missing github token",
			cfg:     Config{Database: DBConfig{DSN: "postgres://localhost/ragforge"}, Embedding: EmbeddingConfig{Dimension: 768}},
			wantErr: true,
		},
		{
			name:    "missing database dsn",
			cfg:     Config{GitHub: GitHubConfig{Token: "t"}, Embedding: EmbeddingConfig{Dimension: 768}},
			wantErr: true,
		},
		{
			name:    "non-positive embedding dimension",
			cfg:     Config{GitHub: GitHubConfig{Token: "t"}, Database: DBConfig{DSN: "d"}, Embedding: EmbeddingConfig{Dimension: 0}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.ValidateForServer()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateForServer() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateForIngest_RequiresGitHubTokenAndDSN(t *testing.T) {
	cfg := Config{GitHub: GitHubConfig{Token: "t"}, Database: DBConfig{DSN: "d"}}
	if err := cfg.ValidateForIngest(); err != nil {
		t.Errorf("ValidateForIngest() unexpected error: %v", err)
	}

	cfg = Config{Database: DBConfig{DSN: "d"}}
	if err := cfg.ValidateForIngest(); err == nil {
		t.Error("ValidateForIngest() expected error for missing github token")
	}
}

func TestSetDefaults_PopulatesExpectedKeys(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() unexpected error: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port default = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Embedding.Dimension != 768 {
		t.Errorf("Embedding.Dimension default = %d, want 768", cfg.Embedding.Dimension)
	}
	if cfg.Chunking.ChunkSize != 500 {
		t.Errorf("Chunking.ChunkSize default = %d, want 500", cfg.Chunking.ChunkSize)
	}
}
