package notice

import "testing"

func TestQueueDrain(t *testing.T) {
	var q Queue
	q.Push(Successf("Movie updated successfully!"))
	q.Push(Notice{Level: Error})
	q.Push(Failure("Failed to create movie!"))

	got := q.Drain()
	if len(got) != 2 || got[0].Level != Success || got[1].Text != "Failed to create movie!" {
		t.Fatalf("Drain = %+v", got)
	}
	if again := q.Drain(); len(again) != 0 {
		t.Fatalf("second Drain = %+v", again)
	}
}

func TestSuccessfFormats(t *testing.T) {
	n := Successf("Rated %d stars successfully!", 4)
	if n.Level != Success || n.Text != "Rated 4 stars successfully!" {
		t.Fatalf("notice = %+v", n)
	}
}
