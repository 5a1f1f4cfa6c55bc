package procedure

import "testing"

func TestCatalogSize(t *testing.T) {
	if Count != 16 {
		t.Fatalf("Count = %d, want 16", Count)
	}
	if len(All()) != Count {
		t.Errorf("len(All()) = %d, want %d", len(All()), Count)
	}
}

func TestLookup(t *testing.T) {
	testCases := []struct {
		name   string
		want   Procedure
		wantOK bool
	}{
		{"sendInitialRegistrationRequest", SendInitialRegistrationRequest, true},
		{"receiveInitialContextSetupRequest(+RegistrationAccept)", ReceiveInitialContextSetupRequest, true},
		{"receivePDUSessionResourceSetupRequest(+EstablishmentAccept)", ReceivePDUSessionResourceSetupRequest, true},
		{"sendContextReleaseComplete", SendContextReleaseComplete, true},
		{"RlsUeEntity_sendSetupComplete", 0, false},
		{"receiveIdentityRequest", 0, false},
		{"", 0, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Lookup(tc.name)
			if ok != tc.wantOK {
				t.Fatalf("Lookup(%q) ok = %v, want %v", tc.name, ok, tc.wantOK)
			}
			if ok && got != tc.want {
				t.Errorf("Lookup(%q) = %v, want %v", tc.name, got, tc.want)
			}
		})
	}
}

func TestStringRoundTrip(t *testing.T) {
	for _, p := range All() {
		got, ok := Lookup(p.String())
		if !ok || got != p {
			t.Errorf("Lookup(%q) = %v, %v; want %v", p.String(), got, ok, p)
		}
	}
}

func TestCatalogOrder(t *testing.T) {
	all := All()
	if all[0].String() != "sendInitialRegistrationRequest" {
		t.Errorf("first = %q", all[0])
	}
	if all[Count-1].String() != "sendContextReleaseComplete" {
		t.Errorf("last = %q", all[Count-1])
	}
	if SessionComplete.String() != "sendPDUSessionResourceSetupResponse" {
		t.Errorf("SessionComplete = %q", SessionComplete)
	}
}

func TestInvalidProcedure(t *testing.T) {
	if Procedure(-1).Valid() || Procedure(Count).Valid() {
		t.Error("out-of-range procedures should be invalid")
	}
	if Procedure(Count).String() != "unknown" {
		t.Errorf("String() = %q, want unknown", Procedure(Count).String())
	}
}
