package cache

import "encoding/binary"

// Key prefixes for the snapshot artifacts.
const (
	metadataKey         = "meta"
	catalogRecordPrefix = "catrec:"
	vectorRecordPrefix  = "vecrec:"
	lexicalStateKey     = "lexsta"
	standardNamesKey    = "mapstd"
	chapterDescKey      = "mapchp"
)

// makeIndexedKey builds prefix + BigEndian row index so iteration order
// matches catalog row order.
func makeIndexedKey(prefix string, idx uint32) []byte {
	buf := make([]byte, len(prefix)+4)
	off := copy(buf, prefix)
	binary.BigEndian.PutUint32(buf[off:], idx)
	return buf
}
