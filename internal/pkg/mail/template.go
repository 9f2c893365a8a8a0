package mail

import (
	"Admission/internal/api/dto"
	"bytes"
	"fmt"
	"html/template"
)

const (
	subjectConsultationConfirmed = "您的咨询请求已收到"
	subjectAdvisorAlert          = "您有 1 条新的咨询请求"
)

var consultationConfirmedTpl = template.Must(template.New("confirmed").Parse(`<p>{{.FullName}} 同学您好：</p>
<p>我们已收到您的咨询请求，招生老师会尽快通过以下方式与您联系。</p>
<ul><li>电话：{{.PhoneNumber}}</li><li>邮箱：{{.Email}}</li></ul>
<p><a href="{{.HomeURL}}">返回招生官网</a></p>`))

var advisorAlertTpl = template.Must(template.New("advisor").Parse(`<p>新的咨询请求：</p>
<ul><li>姓名：{{.FullName}}</li><li>电话：{{.PhoneNumber}}</li><li>邮箱：{{.Email}}</li><li>意向专业：{{.MajorName}}</li></ul>`))

// ConsultationConfirmed 发给学生的确认邮件
func ConsultationConfirmed(student dto.ConsultationStudent, homeURL string) (Message, error) {
	var buf bytes.Buffer
	err := consultationConfirmedTpl.Execute(&buf, struct {
		dto.ConsultationStudent
		HomeURL string
	}{student, homeURL})
	if err != nil {
		return Message{}, fmt.Errorf("render confirmed mail: %w", err)
	}
	return Message{To: student.Email, Subject: subjectConsultationConfirmed, HTML: buf.String()}, nil
}

// AdvisorAlert 发给招生老师的新请求提醒
func AdvisorAlert(advisorEmail string, student dto.ConsultationStudent) (Message, error) {
	var buf bytes.Buffer
	if err := advisorAlertTpl.Execute(&buf, student); err != nil {
		return Message{}, fmt.Errorf("render advisor mail: %w", err)
	}
	return Message{To: advisorEmail, Subject: subjectAdvisorAlert, HTML: buf.String()}, nil
}
