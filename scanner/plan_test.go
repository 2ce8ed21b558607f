package scanner

import (
	"testing"

	"tele-drive/model"
)

func TestPlanValidate(t *testing.T) {
	neg := int64(-1)
	cases := []struct {
		name    string
		plan    ScanPlan
		wantErr bool
	}{
		{name: "minimal", plan: ScanPlan{Channel: "@demo", FileTypes: []model.FileType{model.FileTypeDocument}}},
		{name: "full", plan: ScanPlan{
			Channel:            "t.me/demo_channel",
			Direction:          model.DirectionOldestFirst,
			FileTypes:          []model.FileType{model.FileTypeImage},
			MinSize:            10,
			MaxSize:            100,
			ExtensionBlocklist: []string{"exe", ".scr"},
		}},
		{name: "empty channel", plan: ScanPlan{}, wantErr: true},
		{name: "bad direction", plan: ScanPlan{Channel: "@demo", Direction: "sideways"}, wantErr: true},
		{name: "negative max messages", plan: ScanPlan{Channel: "@demo", MaxMessages: &neg}, wantErr: true},
		{name: "min over max", plan: ScanPlan{Channel: "@demo", MinSize: 100, MaxSize: 10}, wantErr: true},
		{name: "no file types", plan: ScanPlan{Channel: "@demo"}, wantErr: true},
		{name: "unknown file type", plan: ScanPlan{Channel: "@demo", FileTypes: []model.FileType{"spreadsheet"}}, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.plan.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("Validate: %v", err)
			}
		})
	}
}

func TestPlanValidateDefaultsDirection(t *testing.T) {
	plan := ScanPlan{Channel: "@demo", FileTypes: []model.FileType{model.FileTypeDocument}}
	if err := plan.Validate(); err != nil {
		t.Fatal(err)
	}
	if plan.Direction != model.DirectionNewestFirst {
		t.Fatalf("direction = %s, want newest_first", plan.Direction)
	}
}

func TestPlanValidateNormalizesBlocklist(t *testing.T) {
	plan := ScanPlan{
		Channel:            "@demo",
		FileTypes:          []model.FileType{model.FileTypeDocument},
		ExtensionBlocklist: []string{"EXE", " .Zip "},
	}
	if err := plan.Validate(); err != nil {
		t.Fatal(err)
	}
	if plan.ExtensionBlocklist[0] != ".exe" || plan.ExtensionBlocklist[1] != ".zip" {
		t.Fatalf("blocklist = %v", plan.ExtensionBlocklist)
	}
}

func TestPlanAdmits(t *testing.T) {
	plan := ScanPlan{
		Channel:            "@demo",
		FileTypes:          []model.FileType{model.FileTypeDocument, model.FileTypeImage},
		MinSize:            100,
		MaxSize:            10000,
		ExtensionBlocklist: []string{"exe"},
	}
	if err := plan.Validate(); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name     string
		ft       model.FileType
		size     int64
		filename string
		want     bool
	}{
		{"matching document", model.FileTypeDocument, 500, "a.pdf", true},
		{"wrong type", model.FileTypeAudio, 500, "a.mp3", false},
		{"too small", model.FileTypeImage, 50, "a.jpg", false},
		{"too big", model.FileTypeImage, 20000, "a.jpg", false},
		{"blocked extension", model.FileTypeDocument, 500, "setup.exe", false},
		{"at min boundary", model.FileTypeDocument, 100, "a.pdf", true},
		{"at max boundary", model.FileTypeDocument, 10000, "a.pdf", true},
		{"unknown size below min", model.FileTypeDocument, -1, "a.pdf", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := plan.Admits(tc.ft, tc.size, tc.filename); got != tc.want {
				t.Fatalf("Admits = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPlanAllKindsAdmitEverything(t *testing.T) {
	plan := ScanPlan{Channel: "@demo", FileTypes: model.AllFileTypes}
	if err := plan.Validate(); err != nil {
		t.Fatal(err)
	}
	if !plan.Admits(model.FileTypeOther, 0, "anything.xyz") {
		t.Fatal("plan naming every kind should admit everything")
	}
}
