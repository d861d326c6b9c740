// 指示: miu200521358
package io_asset

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/fxamacker/cbor/v2"

	"github.com/miu200521358/mu_mltd2mmd/pkg/domain/model"
	"github.com/miu200521358/mu_mltd2mmd/pkg/domain/motion"
	"github.com/miu200521358/mu_mltd2mmd/pkg/shared/base/merr"
)

const testAvatarJSON = `{
  "name": "cb_ss001",
  "nodes": [{"parent_index": -1}, {"parent_index": 0}, {"parent_index": 1}],
  "node_ids": [10, 20, 30],
  "paths": {"10": "POSITION", "20": "POSITION/MODEL_00", "30": "POSITION/MODEL_00/BASE"},
  "rest_pose": [
    {"translation": [0, 0, 0], "rotation": [0, 0, 0, 1]},
    {"translation": [0, 1, 0], "rotation": [0, 0, 0, 1]},
    {"translation": [0, 0.5, 0], "rotation": [0, 0.7071068, 0, 0.7071068]}
  ]
}`

const testMeshJSON = `{
  "meshes": [{
    "name": "cb_ss001",
    "submeshes": [{
      "name": "skin",
      "texture_name": "skin.png",
      "vertices": [
        {"position": [0, 0, 0], "normal": [0, 0, 1], "uv": [0, 0], "influences": [{"bone_index": 0, "weight": 1}]},
        {"position": [1, 0, 0], "normal": [0, 0, 1], "uv": [1, 0], "influences": [{"bone_index": 1, "weight": 0.6}, {"bone_index": 2, "weight": 0.4}]},
        {"position": [0, 1, 0], "uv": [0, 1], "influences": []}
      ],
      "indices": [0, 1, 2]
    }]
  }],
  "textures": [{"name": "skin.png", "source": "tex/skin.tga"}]
}`

const testMotionJSON = `{
  "motions": [
    {
      "name": "dan_song01_01_dan",
      "frame_rate": 60,
      "bone_tracks": [{
        "path": "POSITION/MODEL_00",
        "keyframes": [
          {"time": 0, "position": [0, 1, 0]},
          {"time": 0.5, "rotation": [0, 0, 0, 1], "curve": {"x1": 0.1, "y1": 0.2, "x2": 0.8, "y2": 0.9}}
        ]
      }]
    },
    {"name": "dan_song01_01_apa", "frame_rate": 60, "bone_tracks": []}
  ]
}`

const testCameraJSON = `{
  "motions": [{
    "name": "cam_song01_cam",
    "frame_rate": 60,
    "camera_keyframes": [{"time": 0, "target": [0, 1, 0], "eye": [0, 1, -5], "field_of_view": 27.5, "roll": 0.1}]
  }]
}`

func writeTestFile(t *testing.T, dir string, name string, content []byte) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), content, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadAvatarJSON(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "cb_ss001.avatar.json", []byte(testAvatarJSON))

	events := []LoadProgressEvent{}
	repo := NewAssetRepository(dir)
	repo.SetLoadProgressReporter(func(event LoadProgressEvent) { events = append(events, event) })

	avatar, err := repo.LoadAvatar("cb_ss001")
	if err != nil {
		t.Fatalf("LoadAvatar failed: %v", err)
	}
	if avatar.Name != "cb_ss001" || avatar.NodeCount() != 3 {
		t.Fatalf("unexpected avatar: name=%s nodes=%d", avatar.Name, avatar.NodeCount())
	}
	if avatar.Nodes[0].ParentIndex != -1 || avatar.Nodes[2].ParentIndex != 1 {
		t.Fatalf("unexpected parents: %+v", avatar.Nodes)
	}
	if avatar.PathByID[30] != "POSITION/MODEL_00/BASE" {
		t.Fatalf("unexpected path: %s", avatar.PathByID[30])
	}
	if avatar.RestPose[1].Translation.Y != 1 {
		t.Fatalf("unexpected translation: %+v", avatar.RestPose[1].Translation)
	}
	if math.Abs(avatar.RestPose[2].Rotation.Y()-0.7071068) > 1e-9 || math.Abs(avatar.RestPose[2].Rotation.W()-0.7071068) > 1e-9 {
		t.Fatalf("unexpected rotation: %+v", avatar.RestPose[2].Rotation)
	}
	if len(events) != 1 || events[0].Kind != ASSET_KIND_AVATAR || events[0].Records != 3 {
		t.Fatalf("unexpected events: %+v", events)
	}

	hierarchy, err := model.BuildBoneHierarchy(avatar)
	if err != nil {
		t.Fatalf("BuildBoneHierarchy failed: %v", err)
	}
	if hierarchy.Len() != 3 {
		t.Fatalf("unexpected hierarchy size: %d", hierarchy.Len())
	}
}

func TestLoadAvatarCBOR(t *testing.T) {
	dir := t.TempDir()
	dump := avatarDump{
		Name:    "ch_ss001",
		Nodes:   []nodeDump{{ParentIndex: -1}, {ParentIndex: 0}},
		NodeIDs: []uint32{1, 2},
		Paths:   map[uint32]string{1: "KUBI", 2: "KUBI/HEAD"},
		RestPose: []transformDump{
			{Translation: []float64{0, 0, 0}, Rotation: []float64{0, 0, 0, 1}},
			{Translation: []float64{0, 0.2, 0}, Rotation: []float64{0, 0, 0, 1}},
		},
	}
	b, err := cbor.Marshal(dump)
	if err != nil {
		t.Fatalf("cbor marshal: %v", err)
	}
	writeTestFile(t, dir, "ch_ss001.avatar.cbor", b)

	repo := NewAssetRepository(dir)
	if !repo.Exists("ch_ss001", ASSET_KIND_AVATAR) {
		t.Fatalf("expected cbor dump to be found")
	}
	avatar, err := repo.LoadAvatar("ch_ss001")
	if err != nil {
		t.Fatalf("LoadAvatar failed: %v", err)
	}
	if avatar.PathByID[2] != "KUBI/HEAD" || avatar.RestPose[1].Translation.Y != 0.2 {
		t.Fatalf("unexpected avatar: %+v", avatar)
	}
}

func TestLoadMeshBundle(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "cb_ss001.mesh.json", []byte(testMeshJSON))

	bundle, err := NewAssetRepository(dir).LoadMeshBundle("cb_ss001")
	if err != nil {
		t.Fatalf("LoadMeshBundle failed: %v", err)
	}
	if len(bundle.Meshes) != 1 || len(bundle.Meshes[0].Submeshes) != 1 {
		t.Fatalf("unexpected meshes: %+v", bundle.Meshes)
	}
	submesh := bundle.Meshes[0].Submeshes[0]
	if submesh.TextureName != "skin.png" || len(submesh.Vertices) != 3 || len(submesh.Indices) != 3 {
		t.Fatalf("unexpected submesh: %+v", submesh)
	}
	if len(submesh.Vertices[1].Influences) != 2 || submesh.Vertices[1].Influences[1].BoneIndex != 2 {
		t.Fatalf("unexpected influences: %+v", submesh.Vertices[1].Influences)
	}
	if submesh.Vertices[2].Normal.Length() != 0 || submesh.Vertices[2].UV.Y != 1 {
		t.Fatalf("unexpected vertex: %+v", submesh.Vertices[2])
	}
	if len(bundle.Textures) != 1 {
		t.Fatalf("unexpected textures: %+v", bundle.Textures)
	}
	expectedSource := filepath.Join(dir, "tex", "skin.tga")
	if bundle.Textures[0].Name != "skin.png" || bundle.Textures[0].SourcePath != expectedSource {
		t.Fatalf("unexpected texture source: %+v", bundle.Textures[0])
	}
}

func TestLoadMotions(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "dan_song01_01.motion.json", []byte(testMotionJSON))
	writeTestFile(t, dir, "cam_song01.motion.json", []byte(testCameraJSON))
	repo := NewAssetRepository(dir)

	motions, err := repo.LoadMotions("dan_song01_01")
	if err != nil {
		t.Fatalf("LoadMotions failed: %v", err)
	}
	if len(motions) != 2 {
		t.Fatalf("unexpected motion count: %d", len(motions))
	}
	dance := motion.FindMotion(motions, "dan_song01_01_dan", "dan")
	if dance == nil {
		t.Fatalf("dance motion not found")
	}
	if dance.FrameRate != 60 || len(dance.BoneTracks) != 1 {
		t.Fatalf("unexpected dance: %+v", dance)
	}
	keyframes := dance.BoneTracks[0].Keyframes
	if !keyframes[0].HasPosition || keyframes[0].HasRotation || keyframes[0].Position.Y != 1 {
		t.Fatalf("unexpected first keyframe: %+v", keyframes[0])
	}
	if keyframes[1].HasPosition || !keyframes[1].HasRotation || keyframes[1].Curve == nil || keyframes[1].Curve.Y2 != 0.9 {
		t.Fatalf("unexpected second keyframe: %+v", keyframes[1])
	}
	if motion.FindMotion(motions, "other", "apa") != motions[1] {
		t.Fatalf("expected suffix lookup to find apa")
	}
	if motion.FindMotion(motions, "other", "") != nil {
		t.Fatalf("expected nil without suffix")
	}

	cameras, err := repo.LoadMotions("cam_song01")
	if err != nil {
		t.Fatalf("LoadMotions camera failed: %v", err)
	}
	camera := motion.FindMotion(cameras, "cam_song01_cam", "cam")
	if camera == nil || !camera.HasCamera() {
		t.Fatalf("camera motion not found")
	}
	if camera.CameraKeyframes[0].Eye.Z != -5 || camera.CameraKeyframes[0].FieldOfView != 27.5 {
		t.Fatalf("unexpected camera keyframe: %+v", camera.CameraKeyframes[0])
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	repo := NewAssetRepository(dir)

	if _, err := repo.LoadAvatar("missing"); merr.ExtractErrorID(err) != merr.ErrorIDMissingAsset {
		t.Fatalf("expected missing asset, got %v", err)
	}
	if _, err := repo.LoadAvatar(""); !merr.IsMissingAsset(err) {
		t.Fatalf("expected missing asset for empty name, got %v", err)
	}

	writeTestFile(t, dir, "broken.avatar.json", []byte("{"))
	if _, err := repo.LoadAvatar("broken"); merr.ExtractErrorID(err) != merr.ErrorIDIoParseFailed {
		t.Fatalf("expected parse failure, got %v", err)
	}

	writeTestFile(t, dir, "short.avatar.json", []byte(`{"nodes":[{"parent_index":-1}],"node_ids":[1],"paths":{"1":"A"},"rest_pose":[{"translation":[0,0],"rotation":[0,0,0,1]}]}`))
	if _, err := repo.LoadAvatar("short"); !merr.IsUnsupportedFormat(err) {
		t.Fatalf("expected unsupported format, got %v", err)
	}

	if _, err := repo.decodeFile(filepath.Join(dir, "x.avatar.txt"), &avatarDump{}); merr.ExtractErrorID(err) != merr.ErrorIDIoExtInvalid {
		t.Fatalf("expected ext invalid, got %v", err)
	}
}

func TestInferName(t *testing.T) {
	repo := NewAssetRepository("")
	cases := map[string]string{
		"/tmp/cb_ss001.avatar.json": "cb_ss001",
		"dan_song01_01.motion.cbor": "dan_song01_01",
		"ch_ss001.mesh.json":        "ch_ss001",
		"plain.json":                "plain",
	}
	for path, expected := range cases {
		if got := repo.InferName(path); got != expected {
			t.Fatalf("InferName(%s): expected %s, got %s", path, expected, got)
		}
	}
	if !repo.CanLoad("a.JSON") || repo.CanLoad("a.yaml") {
		t.Fatalf("unexpected CanLoad result")
	}
}
