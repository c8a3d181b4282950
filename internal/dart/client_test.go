package dart

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dartwatch/internal/config"
	apierrors "dartwatch/internal/errors"
	"dartwatch/internal/shared/testutil"
	"dartwatch/pkg/contracts/domain"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger, _ := testutil.NewTestLogger()
	return NewClient(config.DartConfig{
		APIKey:         "test-key",
		BaseURL:        server.URL,
		ViewerBaseURL:  "https://dart.example/dsaf001/main.do",
		ListTimeout:    5 * time.Second,
		RequestTimeout: 5 * time.Second,
		PageSize:       2,
	}, logger)
}

type callRecorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *callRecorder) UpstreamCall(endpoint, status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, endpoint+":"+status)
}

func TestListFilingsFollowsPages(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/list.json", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("crtfc_key"))
		assert.Equal(t, "20240101", r.URL.Query().Get("bgn_de"))
		assert.Equal(t, "2", r.URL.Query().Get("page_count"))
		assert.Equal(t, "B", r.URL.Query().Get("pblntf_ty"))

		page := r.URL.Query().Get("page_no")
		resp := map[string]any{
			"status": "000", "message": "정상", "total_page": 2, "page_no": page,
		}
		switch page {
		case "1":
			resp["page_no"] = 1
			resp["list"] = []map[string]string{
				{"corp_name": "가나전자", "rcept_no": "20240110000001"},
				{"corp_name": "다라바이오", "rcept_no": "20240110000002"},
			}
		case "2":
			resp["page_no"] = 2
			resp["list"] = []map[string]string{
				{"corp_name": "마바상사", "rcept_no": "20240111000003"},
				{"corp_name": "사아물산", "rcept_no": "20240111000004"},
			}
		default:
			t.Errorf("unexpected page_no %q", page)
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	})

	client := newTestClient(t, mux)
	recorder := &callRecorder{}
	client.SetObserver(recorder)

	window := domain.DateWindow{Begin: "20240101", End: "20240131"}
	got, err := client.ListFilings(context.Background(), window, "B")
	require.NoError(t, err)

	require.Len(t, got, 4)
	assert.Equal(t, "가나전자", got[0].CorpName)
	assert.Equal(t, "사아물산", got[3].CorpName)
	assert.Equal(t, []string{"list.json:ok", "list.json:ok"}, recorder.calls)
}

func TestListFilingsNoDataStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/list.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"013","message":"조회된 데이타가 없습니다."}`)
	})

	client := newTestClient(t, mux)
	_, err := client.ListFilings(context.Background(), domain.DateWindow{Begin: "20240101", End: "20240131"}, "B")

	require.Error(t, err)
	assert.True(t, apierrors.IsUpstream(err))
	assert.ErrorIs(t, err, apierrors.ErrNoData)
}

func TestListFilingsHTTPError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/list.json", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	client := newTestClient(t, mux)
	recorder := &callRecorder{}
	client.SetObserver(recorder)

	_, err := client.ListFilings(context.Background(), domain.DateWindow{Begin: "20240101", End: "20240131"}, "")
	require.Error(t, err)
	assert.Equal(t, []string{"list.json:http_502"}, recorder.calls)
}

func TestCapitalIncreaseDecisions(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/piicDecsn.json", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "00001", r.URL.Query().Get("corp_code"))
		fmt.Fprint(w, `{"status":"000","message":"정상","list":[
			{"rcept_no":"20240110000001","ic_mthn":"주주배정증자","fdpp_op":"1,000"}
		]}`)
	})

	client := newTestClient(t, mux)
	rows, err := client.CapitalIncreaseDecisions(context.Background(), "00001", "20230501", "20240131")
	require.NoError(t, err)

	require.Len(t, rows, 1)
	assert.Equal(t, "주주배정증자", rows[0]["ic_mthn"])
}

func TestEquityRegistrations(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/estkRs.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"000","message":"정상","group":[
			{"title":"일반사항","list":[{"corp_name":"가나전자","pymd":"2024.03.20"}]},
			{"title":"자금의사용목적","list":[{"se":"시설자금","amt":"100"}]}
		]}`)
	})

	client := newTestClient(t, mux)
	groups, err := client.EquityRegistrations(context.Background(), "00001", "20230801", "20240229")
	require.NoError(t, err)

	require.Len(t, groups, 2)
	assert.Equal(t, "일반사항", groups[0].Title)
	assert.Equal(t, "2024.03.20", groups[0].List[0]["pymd"])
}

func TestCompanyOverview(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/company.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"000","message":"정상",
			"ceo_nm":"김영희","adres":"경기도 성남시","phn_no":"031-000-0000","fax_no":"031-000-0001"}`)
	})

	client := newTestClient(t, mux)
	got, err := client.CompanyOverview(context.Background(), "00001")
	require.NoError(t, err)

	assert.Equal(t, "김영희", got.CEOName)
	assert.Equal(t, "경기도 성남시", got.Address)
}

func TestFilingDocument(t *testing.T) {
	archive := func(t *testing.T, name, content string) []byte {
		t.Helper()
		var buf bytes.Buffer
		zw := zip.NewWriter(&buf)
		f, err := zw.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
		require.NoError(t, zw.Close())
		return buf.Bytes()
	}

	t.Run("returns first markup member", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/document.xml", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "20240110000001", r.URL.Query().Get("rcept_no"))
			w.Write(archive(t, "20240110000001.xml", "<DOCUMENT>본문</DOCUMENT>"))
		})

		client := newTestClient(t, mux)
		text, err := client.FilingDocument(context.Background(), "20240110000001")
		require.NoError(t, err)
		assert.Equal(t, "<DOCUMENT>본문</DOCUMENT>", text)
	})

	t.Run("archive without markup member", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/document.xml", func(w http.ResponseWriter, r *http.Request) {
			w.Write(archive(t, "readme.txt", "nothing here"))
		})

		client := newTestClient(t, mux)
		_, err := client.FilingDocument(context.Background(), "20240110000001")
		assert.ErrorIs(t, err, ErrNoDocumentFile)
	})

	t.Run("body is not an archive", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/document.xml", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"status":"100","message":"부적절한 접수번호"}`)
		})

		client := newTestClient(t, mux)
		_, err := client.FilingDocument(context.Background(), "bogus")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNoDocumentFile)
	})
}

func TestViewerURL(t *testing.T) {
	logger, _ := testutil.NewTestLogger()
	client := NewClient(config.DartConfig{ViewerBaseURL: "https://dart.fss.or.kr/dsaf001/main.do"}, logger)

	assert.Equal(t,
		"https://dart.fss.or.kr/dsaf001/main.do?rcpNo=20240110000001",
		client.ViewerURL("20240110000001"))
}

func TestPacingDisabledByDefault(t *testing.T) {
	logger, _ := testutil.NewTestLogger()

	client := NewClient(config.DartConfig{}, logger)
	assert.Nil(t, client.pacer)

	client = NewClient(config.DartConfig{DetailDelay: 50 * time.Millisecond}, logger)
	assert.NotNil(t, client.pacer)
}
