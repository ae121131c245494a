package camera

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

var center = mgl32.Vec3{0.5, 0.5, 0.5}

func TestEyeOnAxis(t *testing.T) {
	cam := New(1280, 720, center, 2, 0, 0, 45)

	eye := cam.Eye()
	want := mgl32.Vec3{2.5, 0.5, 0.5}
	if !eye.ApproxEqualThreshold(want, 1e-5) {
		t.Errorf("expected eye at %v, got %v", want, eye)
	}
}

func TestTargetProjectsToScreenCenter(t *testing.T) {
	cam := New(1280, 720, center, 2.2, 35, 25, 45)

	sx, sy, visible := cam.WorldToScreen(center)
	if !visible {
		t.Fatal("target should be visible")
	}
	if math.Abs(float64(sx-640)) > 0.01 || math.Abs(float64(sy-360)) > 0.01 {
		t.Errorf("expected screen center (640, 360), got (%f, %f)", sx, sy)
	}
}

func TestWorldToScreenUpIsUp(t *testing.T) {
	cam := New(800, 600, center, 2, 0, 0, 45)

	_, syLow, _ := cam.WorldToScreen(mgl32.Vec3{0.5, 0.3, 0.5})
	_, syHigh, _ := cam.WorldToScreen(mgl32.Vec3{0.5, 0.7, 0.5})
	if syHigh >= syLow {
		t.Errorf("higher world y should be higher on screen: high=%f low=%f", syHigh, syLow)
	}
}

func TestBehindEyeNotVisible(t *testing.T) {
	cam := New(800, 600, center, 2, 0, 0, 45)

	// Eye is at x=2.5 looking toward -x; x=4 is behind it.
	if _, _, visible := cam.WorldToScreen(mgl32.Vec3{4, 0.5, 0.5}); visible {
		t.Error("point behind the eye should not be visible")
	}
}

func TestWholeBoxVisibleAtDefaultDistance(t *testing.T) {
	cam := New(1280, 800, center, 2.2, 35, 25, 45)

	for _, corner := range []mgl32.Vec3{
		{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1},
		{1, 1, 0}, {1, 0, 1}, {0, 1, 1}, {1, 1, 1},
	} {
		if _, _, visible := cam.WorldToScreen(corner); !visible {
			t.Errorf("corner %v should be visible", corner)
		}
	}
}

func TestFarToNear(t *testing.T) {
	cam := New(800, 600, center, 2, 0, 0, 45) // eye at x=2.5

	positions := []mgl32.Vec3{
		{0.5, 0.5, 0.5},
		{0.0, 0.5, 0.5}, // farthest
		{1.0, 0.5, 0.5}, // nearest
		{0.5, 0.5, 0.5}, // ties with 0
	}
	got := cam.FarToNear(positions, nil)
	want := []int{1, 0, 3, 2}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("FarToNear = %v, want %v", got, want)
		}
	}

	// positions are untouched
	if positions[1] != (mgl32.Vec3{0, 0.5, 0.5}) {
		t.Error("FarToNear must not reorder positions")
	}

	// dst is reused
	buf := make([]int, 0, 8)
	got = cam.FarToNear(positions, buf)
	if cap(got) != 8 || len(got) != 4 {
		t.Errorf("expected reuse of dst buffer, got len=%d cap=%d", len(got), cap(got))
	}
}

func TestFarToNearReusesDepthScratch(t *testing.T) {
	cam := New(800, 600, center, 2, 0, 0, 45)

	large := make([]mgl32.Vec3, 16)
	for i := range large {
		large[i] = mgl32.Vec3{float32(i) / 16, 0.5, 0.5}
	}
	order := cam.FarToNear(large, nil)
	scratch := &cam.depth[0]

	// A smaller frame sorts correctly inside the same scratch
	small := []mgl32.Vec3{{1, 0.5, 0.5}, {0, 0.5, 0.5}}
	order = cam.FarToNear(small, order)
	if order[0] != 1 || order[1] != 0 {
		t.Errorf("FarToNear = %v, want [1 0]", order)
	}
	if &cam.depth[0] != scratch {
		t.Error("depth scratch should be reused across calls")
	}
	if cap(cam.depth) != 16 {
		t.Errorf("depth scratch cap = %d, want 16", cap(cam.depth))
	}
}

func TestOrbitClampsPitch(t *testing.T) {
	cam := New(800, 600, center, 2, 0, 0, 45)

	cam.Orbit(0, 10)
	if cam.Pitch != maxPitch {
		t.Errorf("expected pitch clamped to %v, got %v", maxPitch, cam.Pitch)
	}
	cam.Orbit(0, -20)
	if cam.Pitch != -maxPitch {
		t.Errorf("expected pitch clamped to %v, got %v", -maxPitch, cam.Pitch)
	}
}

func TestZoomClamps(t *testing.T) {
	cam := New(800, 600, center, 2, 0, 0, 45)

	cam.ZoomBy(100)
	if cam.Distance != cam.MinDistance {
		t.Errorf("expected distance clamped to %v, got %v", cam.MinDistance, cam.Distance)
	}
	cam.ZoomBy(0.001)
	if cam.Distance != cam.MaxDistance {
		t.Errorf("expected distance clamped to %v, got %v", cam.MaxDistance, cam.Distance)
	}
	cam.ZoomBy(0)
	if cam.Distance != cam.MaxDistance {
		t.Error("non-positive zoom factor should be ignored")
	}
}

func TestReset(t *testing.T) {
	cam := New(800, 600, center, 2, 30, 20, 45)
	d, yaw, pitch := cam.Distance, cam.Yaw, cam.Pitch

	cam.Orbit(1, 0.3)
	cam.ZoomBy(1.5)
	cam.Reset()

	if cam.Distance != d || cam.Yaw != yaw || cam.Pitch != pitch {
		t.Errorf("reset failed: got (%v, %v, %v), want (%v, %v, %v)",
			cam.Distance, cam.Yaw, cam.Pitch, d, yaw, pitch)
	}
}

func TestResizeKeepsCenter(t *testing.T) {
	cam := New(800, 600, center, 2, 10, 10, 45)
	cam.Resize(1920, 1080)

	sx, sy, _ := cam.WorldToScreen(center)
	if math.Abs(float64(sx-960)) > 0.01 || math.Abs(float64(sy-540)) > 0.01 {
		t.Errorf("expected screen center (960, 540), got (%f, %f)", sx, sy)
	}
}
