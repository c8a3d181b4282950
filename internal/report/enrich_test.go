package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dartwatch/pkg/contracts/domain"
)

func TestMergeDetailRows(t *testing.T) {
	metas := []listMeta{
		{ReceiptNo: "20240110000001", CorpName: "가나전자", ReportName: "주요사항보고서(유상증자결정)", ViewerURL: viewerURL("20240110000001")},
		{ReceiptNo: "20240115000002", CorpName: "가나전자", ReportName: "[기재정정] 주요사항보고서(유상증자결정)", ViewerURL: viewerURL("20240115000002")},
	}

	t.Run("receipt keyed join", func(t *testing.T) {
		rows := []map[string]string{
			{"rcept_no": "20240110000001", "ic_mthn": "주주배정증자"},
		}
		got := mergeDetailRows("00001", rows, metas)

		require.Len(t, got, 1)
		assert.Equal(t, "가나전자", got[0].CorpName)
		assert.Equal(t, "주요사항보고서(유상증자결정)", got[0].ReportName)
		assert.Equal(t, viewerURL("20240110000001"), got[0].ViewerURL)
	})

	t.Run("detail corp name wins", func(t *testing.T) {
		rows := []map[string]string{
			{"rcept_no": "20240110000001", "corp_name": "가나전자우"},
		}
		got := mergeDetailRows("00001", rows, metas)

		require.Len(t, got, 1)
		assert.Equal(t, "가나전자우", got[0].CorpName)
	})

	t.Run("unmatched receipt survives", func(t *testing.T) {
		rows := []map[string]string{
			{"rcept_no": "20231201000099", "ic_mthn": "제3자배정증자"},
		}
		got := mergeDetailRows("00001", rows, metas)

		require.Len(t, got, 1)
		assert.Empty(t, got[0].CorpName)
		assert.Equal(t, "20231201000099", got[0].ReceiptNo)
	})

	t.Run("rows without receipt fan out over list entries", func(t *testing.T) {
		rows := []map[string]string{
			{"ic_mthn": "일반공모증자"},
		}
		got := mergeDetailRows("00001", rows, metas)

		require.Len(t, got, 2)
		assert.Equal(t, "20240110000001", got[0].ReceiptNo)
		assert.Equal(t, "20240115000002", got[1].ReceiptNo)
		assert.Equal(t, "가나전자", got[0].CorpName)
	})
}

func TestFilterByEmbeddedDate(t *testing.T) {
	window := domain.DateWindow{Begin: "20240101", End: "20240131"}
	details := []domain.DecisionDetail{
		{CorpCode: "00001", ReceiptNo: "20240110000001"},
		{CorpCode: "00001", ReceiptNo: "20231228000002"}, // before the window
		{CorpCode: "00001", ReceiptNo: "20240201000003"}, // after the window
		{CorpCode: "00001", ReceiptNo: "short"},
		{CorpCode: "00001", ReceiptNo: "2024011X000004"},
		{CorpCode: "00001", ReceiptNo: "20240131000005"}, // end is inclusive
	}

	got := filterByEmbeddedDate(details, window)

	require.Len(t, got, 2)
	assert.Equal(t, "20240110000001", got[0].ReceiptNo)
	assert.Equal(t, "20240131000005", got[1].ReceiptNo)
}

func TestDedupDetails(t *testing.T) {
	details := []domain.DecisionDetail{
		{CorpCode: "00001", ReceiptNo: "20240110000001", CorpName: "first"},
		{CorpCode: "00001", ReceiptNo: "20240110000001", CorpName: "second"},
		{CorpCode: "00002", ReceiptNo: "20240110000001"},
	}

	got := dedupDetails(details)

	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].CorpName)
	assert.Equal(t, "00002", got[1].CorpCode)
}

func TestWidenBegin(t *testing.T) {
	assert.Equal(t, "20230510", widenBegin("20240110", 8))
	assert.Equal(t, "20230710", widenBegin("20240110", 6))
	// Unparseable input passes through untouched.
	assert.Equal(t, "bogus", widenBegin("bogus", 8))
}
