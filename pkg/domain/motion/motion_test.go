// 指示: miu200521358
package motion

import (
	"math"
	"testing"

	"github.com/miu200521358/mu_mltd2mmd/pkg/domain/mmath"
	"github.com/miu200521358/mu_mltd2mmd/pkg/shared/base/merr"
)

func TestCollapseBoneKeyframesScenarioC(t *testing.T) {
	keyframes := []BoneKeyframe{
		{Time: 0, Position: mmath.NewVec3(1, 0, 0)},
		{Time: 0, Position: mmath.NewVec3(2, 0, 0)},
		{Time: 5.0 / 30.0, Position: mmath.NewVec3(3, 0, 0)},
	}

	framed, collapsed, err := CollapseBoneKeyframes(keyframes, 30)
	if err != nil {
		t.Fatalf("collapse failed: %v", err)
	}
	if len(framed) != 2 || framed[0].Frame != 0 || framed[1].Frame != 5 {
		t.Fatalf("frames mismatch: %+v", framed)
	}
	if collapsed != 1 {
		t.Fatalf("collapsed mismatch: %d", collapsed)
	}
	if framed[0].Position.X != 2 {
		t.Fatalf("last keyframe of the frame should win: %v", framed[0].Position)
	}
}

func TestCollapseBoneKeyframesSortsStable(t *testing.T) {
	keyframes := []BoneKeyframe{
		{Time: 1.0, Position: mmath.NewVec3(1, 0, 0)},
		{Time: 0.5, Position: mmath.NewVec3(2, 0, 0)},
		{Time: 1.0, Position: mmath.NewVec3(3, 0, 0)},
		{Time: 0.0, Position: mmath.NewVec3(4, 0, 0)},
	}

	framed, collapsed, err := CollapseBoneKeyframes(keyframes, 30)
	if err != nil {
		t.Fatalf("collapse failed: %v", err)
	}
	want := []uint32{0, 15, 30}
	if len(framed) != len(want) {
		t.Fatalf("length mismatch: %+v", framed)
	}
	for i := range want {
		if framed[i].Frame != want[i] {
			t.Fatalf("frame mismatch at %d: got=%d want=%d", i, framed[i].Frame, want[i])
		}
	}
	if framed[2].Position.X != 3 || collapsed != 1 {
		t.Fatalf("collapse mismatch: x=%v collapsed=%d", framed[2].Position.X, collapsed)
	}
}

func TestCollapseKeyframesNonDecreasingProperty(t *testing.T) {
	times := []float64{0.9, 0.1, 0.1, 0.4, 0.4, 0.4, 0.0, 2.5, 1.3}
	keyframes := make([]CameraKeyframe, len(times))
	for i, tm := range times {
		keyframes[i] = CameraKeyframe{Time: tm}
	}

	for _, fps := range []float64{24, 30, 60} {
		framed, collapsed, err := CollapseCameraKeyframes(keyframes, fps)
		if err != nil {
			t.Fatalf("collapse failed: %v", err)
		}
		for i := 1; i < len(framed); i++ {
			if framed[i].Frame <= framed[i-1].Frame {
				t.Fatalf("frames should be strictly increasing: fps=%v %+v", fps, framed)
			}
		}
		if len(framed)+collapsed != len(keyframes) {
			t.Fatalf("count mismatch: fps=%v framed=%d collapsed=%d", fps, len(framed), collapsed)
		}
	}
}

func TestQuantizeFrameRejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name    string
		seconds float64
		fps     float64
	}{
		{name: "nan", seconds: math.NaN(), fps: 30},
		{name: "negative", seconds: -1, fps: 30},
		{name: "zero fps", seconds: 1, fps: 0},
		{name: "overflow", seconds: 1e12, fps: 30},
	}
	for _, tc := range cases {
		if _, err := QuantizeFrame(tc.seconds, tc.fps); !merr.IsUnsupportedFormat(err) {
			t.Fatalf("%s: expected unsupported format, got %v", tc.name, err)
		}
	}
	frame, err := QuantizeFrame(0.516, 30)
	if err != nil || frame != 15 {
		t.Fatalf("rounding mismatch: frame=%d err=%v", frame, err)
	}
}

func TestMotionAssetLookup(t *testing.T) {
	asset := &MotionAsset{BoneTracks: []BoneTrack{
		{Path: "a", Keyframes: make([]BoneKeyframe, 2)},
		{Path: "b", Keyframes: make([]BoneKeyframe, 3)},
		{Path: "a", Keyframes: make([]BoneKeyframe, 1)},
	}}

	track, ok := asset.TrackByPath("a")
	if !ok || len(track.Keyframes) != 2 {
		t.Fatalf("track lookup mismatch")
	}
	if index := asset.TrackIndex(); index["a"] != 0 || index["b"] != 1 {
		t.Fatalf("track index mismatch: %v", index)
	}
	if asset.KeyframeCount() != 6 {
		t.Fatalf("keyframe count mismatch: %d", asset.KeyframeCount())
	}
	if asset.HasCamera() {
		t.Fatalf("camera should be empty")
	}
	var nilAsset *MotionAsset
	if _, ok := nilAsset.TrackByPath("a"); ok || nilAsset.KeyframeCount() != 0 {
		t.Fatalf("nil asset should be empty")
	}
}
