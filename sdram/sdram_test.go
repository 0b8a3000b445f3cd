package sdram

import (
	"errors"
	"testing"
)

func TestBankMap(t *testing.T) {
	b := NewBank(0xC0000000, 1024)
	tests := []struct {
		name    string
		addr    uintptr
		size    int
		wantErr bool
	}{
		{"start", 0xC0000000, 16, false},
		{"whole", 0xC0000000, 1024, false},
		{"end", 0xC0000000 + 1000, 24, false},
		{"past end", 0xC0000000 + 1000, 25, true},
		{"below", 0xBFFFFFFF, 4, true},
		{"null", 0, 4, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pix, err := b.Map(tt.addr, tt.size)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Map() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrUnmapped) {
					t.Errorf("error %v does not wrap ErrUnmapped", err)
				}
				return
			}
			if len(pix) != tt.size || cap(pix) != tt.size {
				t.Errorf("len/cap = %d/%d, want %d", len(pix), cap(pix), tt.size)
			}
		})
	}
}

func TestBankAliases(t *testing.T) {
	b := NewBank(0x1000, 64)
	a, _ := b.Map(0x1010, 4)
	a[0] = 0x5A
	if b.Bytes()[16] != 0x5A {
		t.Error("mapped slice does not alias the bank")
	}
}

func TestBanks(t *testing.T) {
	sram := NewBank(0x20000000, 256)
	sdram := NewBank(0xC0000000, 256)
	bs := Banks{sram, sdram}
	if _, err := bs.Map(0xC0000080, 128); err != nil {
		t.Errorf("Map(sdram) error = %v", err)
	}
	if _, err := bs.Map(0x20000080, 256); !errors.Is(err, ErrUnmapped) {
		t.Errorf("Map(straddling) error = %v", err)
	}
}

func TestPhysicalRejectsNull(t *testing.T) {
	if _, err := (Physical{}).Map(0, 16); !errors.Is(err, ErrUnmapped) {
		t.Errorf("Map(0) error = %v", err)
	}
}
