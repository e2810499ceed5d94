package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/shortlist/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.ShortlistThreshold, convey.ShouldEqual, 3)
			convey.So(cfg.TopN, convey.ShouldEqual, 5)
			convey.So(cfg.ShortlistDir, convey.ShouldEqual, "shortlisted_cvs")
			convey.So(cfg.Google.ResponsesRange, convey.ShouldEqual, "Form Responses 1")
			convey.So(cfg.Google.ResultsRange, convey.ShouldEqual, "Results!A:F")
			convey.So(cfg.Google.Enabled(), convey.ShouldBeFalse)
			convey.So(cfg.RequiredSkills["1021"], convey.ShouldResemble, []string{"python", "flask", "api", "sql", "git"})
			convey.So(cfg.RequiredSkills, convey.ShouldContainKey, "designer")
		})
	})
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1_000)
				convey.So(cfg.MaxUploadMB, convey.ShouldEqual, 32)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("SHORTLIST_ADDR", ":8080")
			_ = os.Setenv("SHORTLIST_QUEUE_SIZE", "50")
			_ = os.Setenv("SHORTLIST_WORKER_COUNT", "3")
			_ = os.Setenv("SHORTLIST_SHORTLIST_THRESHOLD", "2")
			_ = os.Setenv("SHORTLIST_GOOGLE_SHEET_ID", "sheet-123")
			_ = os.Setenv("SHORTLIST_GOOGLE_CREDENTIALS_PATH", "/etc/creds.json")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 50)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 3)
				convey.So(cfg.ShortlistThreshold, convey.ShouldEqual, 2)
				convey.So(cfg.Google.SheetID, convey.ShouldEqual, "sheet-123")
				convey.So(cfg.Google.SheetsEnabled(), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
top_n: 3
shortlist_dir: /var/lib/shortlist
required_skills:
  backend: [go, postgres, kafka]
google:
  credentials_path: /secrets/sa.json
  drive_folder_id: folder-1
  upload_to_drive: false
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("SHORTLIST_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.TopN, convey.ShouldEqual, 3)
				convey.So(cfg.ShortlistDir, convey.ShouldEqual, "/var/lib/shortlist")
				convey.So(cfg.RequiredSkills["backend"], convey.ShouldResemble, []string{"go", "postgres", "kafka"})
				convey.So(cfg.RequiredSkills, convey.ShouldHaveLength, 1)
				convey.So(cfg.RequiredSkills, convey.ShouldNotContainKey, "1021")
				convey.So(cfg.Google.DriveFolderID, convey.ShouldEqual, "folder-1")
				convey.So(cfg.Google.UploadToDrive, convey.ShouldBeFalse)
				convey.So(cfg.Google.ResultsRange, convey.ShouldEqual, "Results!A:F") // From defaults
			})
		})

		convey.Convey("When the YAML file has no required_skills block", func() {
			tmpFile := createTempConfigFile("top_n: 2\n")
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("SHORTLIST_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then the default jobs are kept", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.RequiredSkills, convey.ShouldContainKey, "1021")
				convey.So(cfg.RequiredSkills, convey.ShouldContainKey, "designer")
			})
		})

		convey.Convey("When both file and environment variables are set", func() {
			tmpFile := createTempConfigFile("addr: \":9090\"\nworker_count: 24\n")
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("SHORTLIST_CONFIG", tmpFile)
			_ = os.Setenv("SHORTLIST_ADDR", ":8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")   // Overridden by env
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 24) // From file
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("SHORTLIST_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("SHORTLIST_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("SHORTLIST_QUEUE_SIZE", "invalid")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func TestConfigValidation(t *testing.T) {
	convey.Convey("Given config validation", t, func() {
		ctx := context.Background()

		convey.Convey("When addr is empty", func() {
			_ = os.Setenv("SHORTLIST_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
			})
		})

		convey.Convey("When top_n is zero", func() {
			_ = os.Setenv("SHORTLIST_TOP_N", "0")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then it should be rejected", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "top_n")
			})
		})

		convey.Convey("When the threshold is negative", func() {
			cfg := config.New()
			cfg.ShortlistThreshold = -1

			convey.Convey("Then Validate should fail", func() {
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"SHORTLIST_CONFIG",
		"SHORTLIST_ADDR",
		"SHORTLIST_QUEUE_SIZE",
		"SHORTLIST_WORKER_COUNT",
		"SHORTLIST_SHORTLIST_THRESHOLD",
		"SHORTLIST_TOP_N",
		"SHORTLIST_GOOGLE_SHEET_ID",
		"SHORTLIST_GOOGLE_CREDENTIALS_PATH",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "shortlist-config-*.yaml")
	if err != nil {
		panic(err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}
	if err := tmpFile.Close(); err != nil {
		panic(err)
	}
	return tmpFile.Name()
}
