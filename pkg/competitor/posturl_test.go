package competitor

import "testing"

func TestConvertToPostViewURLBuildsFromBlogIDAndLogNo(t *testing.T) {
	got := ConvertToPostViewURL("https://blog.naver.com/myblogid/223456789")
	want := "https://blog.naver.com/PostView.naver?blogId=myblogid&logNo=223456789"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestConvertToPostViewURLPassesThroughExistingPostView(t *testing.T) {
	url := "https://blog.naver.com/PostView.naver?blogId=x&logNo=1"
	if got := ConvertToPostViewURL(url); got != url {
		t.Errorf("expected passthrough, got %q", got)
	}
}

func TestConvertToPostViewURLReturnsEmptyForUnrecognizedURL(t *testing.T) {
	if got := ConvertToPostViewURL("https://example.com/some/other/path"); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}
