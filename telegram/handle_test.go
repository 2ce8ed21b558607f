package telegram

import "testing"

func TestParseHandle(t *testing.T) {
	cases := []struct {
		in      string
		kind    HandleKind
		value   string
		id      int64
		wantErr bool
	}{
		{in: "@golang_news", kind: HandleUsername, value: "golang_news"},
		{in: "golang_news", kind: HandleUsername, value: "golang_news"},
		{in: "GoLang_News", kind: HandleUsername, value: "golang_news"},
		{in: "t.me/golang_news", kind: HandleUsername, value: "golang_news"},
		{in: "https://t.me/golang_news", kind: HandleUsername, value: "golang_news"},
		{in: "https://t.me/golang_news/", kind: HandleUsername, value: "golang_news"},
		{in: "telegram.me/golang_news", kind: HandleUsername, value: "golang_news"},
		{in: "t.me/+AbCdEf123", kind: HandleInvite, value: "AbCdEf123"},
		{in: "https://t.me/joinchat/AbCdEf123", kind: HandleInvite, value: "AbCdEf123"},
		{in: "+AbCdEf123", kind: HandleInvite, value: "AbCdEf123"},
		{in: "-1001234567890", kind: HandleID, id: -1001234567890},
		{in: "1234567", kind: HandleID, id: 1234567},
		{in: "  @golang_news  ", kind: HandleUsername, value: "golang_news"},
		{in: "", wantErr: true},
		{in: "ab", wantErr: true},
		{in: "has spaces in it", wantErr: true},
		{in: "t.me/+", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			h, err := ParseHandle(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseHandle(%q) succeeded, want error", tc.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseHandle(%q): %v", tc.in, err)
			}
			if h.Kind != tc.kind {
				t.Fatalf("kind = %s, want %s", h.Kind, tc.kind)
			}
			switch tc.kind {
			case HandleUsername:
				if h.Username != tc.value {
					t.Fatalf("username = %s, want %s", h.Username, tc.value)
				}
			case HandleInvite:
				if h.Invite != tc.value {
					t.Fatalf("invite = %s, want %s", h.Invite, tc.value)
				}
			case HandleID:
				if h.ID != tc.id {
					t.Fatalf("id = %d, want %d", h.ID, tc.id)
				}
			}
		})
	}
}
