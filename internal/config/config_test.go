package config_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/okian/twinkle/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.StarCount, convey.ShouldEqual, 25)
			convey.So(cfg.StarSize, convey.ShouldEqual, 2)
			convey.So(cfg.LoopDuration, convey.ShouldEqual, 7)
			convey.So(cfg.BlurAmount, convey.ShouldEqual, 4)
			convey.So(cfg.AutoStart, convey.ShouldBeTrue)
			convey.So(cfg.BlurTarget, convey.ShouldEqual, "backdrop")
			convey.So(cfg.FPS, convey.ShouldEqual, 30)
			convey.So(cfg.Renderer, convey.ShouldEqual, config.RendererTerminal)
			convey.So(cfg.HTTPAddr, convey.ShouldBeEmpty)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then the frame interval follows fps", func() {
			convey.So(cfg.FrameInterval(), convey.ShouldEqual, time.Second/30)
			cfg.FPS = 0
			convey.So(cfg.FrameInterval(), convey.ShouldEqual, time.Second/30)
			cfg.FPS = 60
			convey.So(cfg.FrameInterval(), convey.ShouldEqual, time.Second/60)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given invalid configurations", t, func() {
		cases := []struct {
			name   string
			mutate func(*config.Config)
		}{
			{"negative star count", func(c *config.Config) { c.StarCount = -1 }},
			{"zero star size", func(c *config.Config) { c.StarSize = 0 }},
			{"zero loop", func(c *config.Config) { c.LoopDuration = 0 }},
			{"infinite loop", func(c *config.Config) { c.LoopDuration = math.Inf(1) }},
			{"negative blur", func(c *config.Config) { c.BlurAmount = -1 }},
			{"zero fps", func(c *config.Config) { c.FPS = 0 }},
			{"negative run_for", func(c *config.Config) { c.RunFor = -time.Second }},
			{"unknown renderer", func(c *config.Config) { c.Renderer = "webgl" }},
			{"unknown log format", func(c *config.Config) { c.LogFormat = "xml" }},
		}

		for _, tc := range cases {
			convey.Convey("Then "+tc.name+" is rejected", func() {
				cfg := config.New()
				tc.mutate(cfg)
				err := cfg.Validate()
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}

		convey.Convey("Then zero stars and zero blur are accepted", func() {
			cfg := config.New()
			cfg.StarCount = 0
			cfg.BlurAmount = 0
			cfg.BlurTarget = ""
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
