package events

import "testing"

func TestParseObjectKey(t *testing.T) {
	tests := []struct {
		name      string
		objectKey string
		wantAppID string
		wantFile  string
		wantErr   bool
	}{
		{name: "valid", objectKey: "customers_data/HL1755000000000/documents/payslip.txt", wantAppID: "HL1755000000000", wantFile: "payslip.txt"},
		{name: "valid with backslashes", objectKey: "customers_data\\HL1\\documents\\pan.txt", wantAppID: "HL1", wantFile: "pan.txt"},
		{name: "basic info json ignored", objectKey: "customers_data/HL1/HL1_basic_info.json", wantErr: true},
		{name: "model weights ignored", objectKey: "ml_models/property_valuation_weights.json", wantErr: true},
		{name: "audit log ignored", objectKey: "audit_logs/HL1.json", wantErr: true},
		{name: "wrong prefix", objectKey: "uploads/HL1/documents/pan.txt", wantErr: true},
		{name: "nested filename rejected", objectKey: "customers_data/HL1/documents/extra/pan.txt", wantErr: true},
		{name: "empty", objectKey: "", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			appID, filename, err := parseObjectKey(tc.objectKey)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if appID != tc.wantAppID {
				t.Fatalf("application id mismatch: got %q want %q", appID, tc.wantAppID)
			}
			if filename != tc.wantFile {
				t.Fatalf("filename mismatch: got %q want %q", filename, tc.wantFile)
			}
		})
	}
}

func TestDecodeObjectKey(t *testing.T) {
	decoded, err := decodeObjectKey("customers_data%2FHL1%2Fdocuments%2Fpayslip%20final.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decoded != "customers_data/HL1/documents/payslip final.txt" {
		t.Fatalf("decoded mismatch: got %q", decoded)
	}

	if _, err := decodeObjectKey("   "); err == nil {
		t.Fatalf("expected error for blank key")
	}
}
