package memory_test

import (
	"sync"
	"testing"

	"github.com/okian/twinkle/internal/adapters/render/memory"
	"github.com/okian/twinkle/internal/domain/timeline"
	"github.com/smartystreets/goconvey/convey"
)

func TestSink(t *testing.T) {
	convey.Convey("Given an empty memory sink", t, func() {
		s := memory.New()

		convey.Convey("When values are written", func() {
			s.SetProperty("star-1", timeline.PropertyOpacity, 0.4)
			s.SetProperty("star-1", timeline.PropertyOpacity, 0.6)
			s.SetProperty("star-0", timeline.PropertyScale, 1.1)

			convey.Convey("Then the last value wins", func() {
				v, ok := s.Get("star-1", timeline.PropertyOpacity)
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(v, convey.ShouldEqual, 0.6)
				convey.So(s.Writes(), convey.ShouldEqual, 3)
			})

			convey.Convey("Then targets are listed in order", func() {
				convey.So(s.Targets(), convey.ShouldResemble, []string{"star-0", "star-1"})
			})

			convey.Convey("Then properties are copied out", func() {
				props := s.Properties("star-1")
				props[timeline.PropertyOpacity] = 9
				v, _ := s.Get("star-1", timeline.PropertyOpacity)
				convey.So(v, convey.ShouldEqual, 0.6)
				convey.So(s.Properties("missing"), convey.ShouldBeNil)
			})

			convey.Convey("Then clearing removes the target", func() {
				s.Clear("star-1")
				_, ok := s.Get("star-1", timeline.PropertyOpacity)
				convey.So(ok, convey.ShouldBeFalse)
				convey.So(s.Targets(), convey.ShouldResemble, []string{"star-0"})
			})
		})

		convey.Convey("When many goroutines write", func() {
			var wg sync.WaitGroup
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for j := 0; j < 100; j++ {
						s.SetProperty("backdrop", timeline.PropertyBlur, float64(j))
					}
				}()
			}
			wg.Wait()

			convey.Convey("Then every write is counted", func() {
				convey.So(s.Writes(), convey.ShouldEqual, 800)
				v, ok := s.Get("backdrop", timeline.PropertyBlur)
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(v, convey.ShouldEqual, 99)
			})
		})
	})
}
