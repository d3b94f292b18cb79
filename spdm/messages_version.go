package spdm

// GetVersionRequest carries no body: version is the one exchange that
// happens before any version has been negotiated, so its header alone
// (plus the zero version byte) is the whole message.
type GetVersionRequest struct{}

func (m *GetVersionRequest) Code() MessageCode { return CodeGetVersion }

func (m *GetVersionRequest) Encode(v ProtocolVersion, w *Writer) (int, error) {
	if err := w.WriteHeader(v, CodeGetVersion, 0, 0); err != nil {
		return 0, err
	}
	return w.Len(), nil
}

func (m *GetVersionRequest) Decode(v ProtocolVersion, param1, param2 uint8, r *Reader) error {
	return nil
}

// VersionEntry is one entry in the VERSION response's version list.
type VersionEntry struct {
	Version  ProtocolVersion
	Reserved uint8
}

// VersionResponse lists every version the responder supports,
// descending by the responder's own preference.
type VersionResponse struct {
	Entries []VersionEntry
}

func (m *VersionResponse) Code() MessageCode { return CodeVersion }

func (m *VersionResponse) Encode(v ProtocolVersion, w *Writer) (int, error) {
	if err := w.WriteHeader(v, CodeVersion, 0, 0); err != nil {
		return 0, err
	}
	if err := w.WriteReserved(1); err != nil {
		return 0, err
	}
	if len(m.Entries) > 0xFF {
		return 0, ErrInsufficientSpace
	}
	if err := w.WriteUint8(uint8(len(m.Entries))); err != nil {
		return 0, err
	}
	for _, e := range m.Entries {
		if err := w.WriteUint8(e.Version.byte()); err != nil {
			return 0, err
		}
		if err := w.WriteUint8(e.Reserved); err != nil {
			return 0, err
		}
	}
	return w.Len(), nil
}

func (m *VersionResponse) Decode(v ProtocolVersion, param1, param2 uint8, r *Reader) error {
	if err := r.SkipReserved(1); err != nil {
		return err
	}
	count, err := r.ReadUint8()
	if err != nil {
		return err
	}
	entries := make([]VersionEntry, count)
	for i := range entries {
		vb, err := r.ReadUint8()
		if err != nil {
			return err
		}
		rsv, err := r.ReadUint8()
		if err != nil {
			return err
		}
		entries[i] = VersionEntry{Version: versionFromByte(vb), Reserved: rsv}
	}
	m.Entries = entries
	return nil
}

// NegotiateVersion picks the numerically highest version common to
// local (the engine's build-time supported list) and peer (the
// descending list the other side proposed). An empty intersection is a
// terminal VersionMismatch.
func NegotiateVersion(local []ProtocolVersion, peer []VersionEntry) (ProtocolVersion, error) {
	var best ProtocolVersion
	found := false
	for _, l := range local {
		for _, p := range peer {
			if l == p.Version {
				if !found || best.Less(l) {
					best = l
					found = true
				}
			}
		}
	}
	if !found {
		return ProtocolVersion{}, ErrVersionMismatch
	}
	return best, nil
}
