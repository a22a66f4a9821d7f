package timezone

import "time"

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("America/Los_Angeles")
	if err != nil {
		panic(err)
	}
}

// force timestamps into the course-local timezone because crawler
// hosts sometimes end up on east coast which will cause disturbances
// when gating work on <time.Time>.Hour() or formatting tee dates
func Now() time.Time {
	return time.Now().In(Location)
}

// midnight of the current day, course-local
func Today() time.Time {
	now := Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, Location)
}
