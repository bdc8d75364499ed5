package tui

import "testing"

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		requested View
		authed    bool
		want      View
	}{
		{"dashboard needs session", ViewTasks, false, ViewSignIn},
		{"dashboard with session", ViewTasks, true, ViewTasks},
		{"signin bounces when signed in", ViewSignIn, true, ViewTasks},
		{"signup bounces when signed in", ViewSignUp, true, ViewTasks},
		{"signin stays when signed out", ViewSignIn, false, ViewSignIn},
		{"signup stays when signed out", ViewSignUp, false, ViewSignUp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.requested, tt.authed); got != tt.want {
				t.Fatalf("Resolve(%v, %v)=%v, want %v", tt.requested, tt.authed, got, tt.want)
			}
		})
	}
}

func TestHome(t *testing.T) {
	if Home(true) != ViewTasks {
		t.Fatal("signed-in landing should be the dashboard")
	}
	if Home(false) != ViewSignIn {
		t.Fatal("signed-out landing should be sign-in")
	}
}
